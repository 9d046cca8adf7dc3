package templates

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/internal/content/template"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|glob>...",
	Short: "Validate template configuration files",
	Long: `Validate template configuration files against the template schema.

Files are merged in order, so duplicate keys across files are reported.

Examples:
  folio templates validate templates/sections.yaml
  folio templates validate 'templates/**/*.yaml'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := template.ExpandPaths(args...)
		if err != nil {
			return err
		}
		reg, err := template.Load(paths...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d template(s) valid in %d file(s)\n", reg.Len(), len(paths))
		return nil
	},
}
