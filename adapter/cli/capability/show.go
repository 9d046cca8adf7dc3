package capability

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a capability definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		key, err := sdk.NewKey(args[0])
		if err != nil {
			return err
		}
		def, ok := a.Catalog.Definition(key)
		if !ok {
			return fmt.Errorf("capability not registered: %s", key)
		}
		d := sdk.Describe(def)

		out := cmd.OutOrStdout()
		if showJSON {
			return cli.PrintJSON(out, d)
		}

		cli.Heading(out, "Capability: "+d.Key.String(), 50)
		fmt.Fprintf(out, "  Description: %s\n", d.Description)
		fmt.Fprintf(out, "  Public:      %t\n", d.Public)
		if d.ReturnType != "" {
			fmt.Fprintf(out, "  Returns:     %s\n", d.ReturnType)
		}
		if len(d.Parameters) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Parameters")
		fmt.Fprintln(out, strings.Repeat("-", 50))
		for _, p := range d.Parameters {
			line := fmt.Sprintf("  %-12s %-8s", p.Name, p.Type)
			if p.Required {
				line += " required"
			}
			if p.Default != nil {
				line += fmt.Sprintf(" default=%v", p.Default)
			}
			if p.Description != "" {
				line += "  " + p.Description
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
