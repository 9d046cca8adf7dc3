package templates

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List section templates",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		all := reg.All()

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, all)
		}
		if len(all) == 0 {
			fmt.Fprintln(out, "No templates found.")
			return nil
		}
		for _, tmpl := range all {
			source := ""
			if tmpl.HasCapabilitySource() {
				source = " <- " + tmpl.DataSource.CapabilityKey.String()
			}
			fmt.Fprintf(out, "%-28s [%s]%s\n", tmpl.Key, strings.Join(tmpl.AllowedSlots, ","), source)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
