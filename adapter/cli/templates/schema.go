package templates

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of template configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintJSON(cmd.OutOrStdout(), template.Schema())
	},
}
