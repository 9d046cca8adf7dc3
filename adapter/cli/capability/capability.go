// Package capability implements the "folio capability" commands.
package capability

import "github.com/spf13/cobra"

// Cmd is the capability command group.
var Cmd = &cobra.Command{
	Use:     "capability",
	Aliases: []string{"cap"},
	Short:   "Inspect and resolve registered capabilities",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(resolveCmd)
}
