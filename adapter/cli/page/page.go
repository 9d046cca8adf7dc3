// Package page implements the "folio page" and "folio section" commands.
package page

import "github.com/spf13/cobra"

// Cmd is the page command group.
var Cmd = &cobra.Command{
	Use:   "page",
	Short: "Manage and render pages",
}

// SectionCmd is the section command group.
var SectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Manage page sections",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(renderCmd)
	Cmd.AddCommand(saveCmd)

	SectionCmd.AddCommand(sectionSaveCmd)
	SectionCmd.AddCommand(sectionDeleteCmd)
}
