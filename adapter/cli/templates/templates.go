// Package templates implements the "folio templates" commands.
package templates

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

var files []string

// Cmd is the templates command group.
var Cmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Inspect and validate section templates",
}

func init() {
	Cmd.PersistentFlags().StringArrayVarP(&files, "file", "f", nil, "template configuration file or glob (repeatable)")
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}

// registry returns the templates named by --file, the application's
// templates, or the built-in set, in that order.
func registry() (*template.Registry, error) {
	if len(files) > 0 {
		return template.Load(files...)
	}
	if a := cli.GetApp(); a != nil && a.Templates != nil {
		return a.Templates, nil
	}
	return template.LoadDefault()
}
