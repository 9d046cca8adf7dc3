package capability

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
)

var (
	listMatch      string
	listPublicOnly bool
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered capabilities",
	Long: `List registered capabilities.

Examples:
  folio capability list
  folio capability list --public
  folio capability list --match 'projects.*'`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var defs []sdk.Definition
		switch {
		case listMatch != "":
			defs, err = a.Catalog.Match(listMatch)
			if err != nil {
				return err
			}
		case listPublicOnly:
			defs = a.Catalog.PublicDefinitions()
		default:
			defs = a.Catalog.Definitions()
		}
		if listMatch != "" && listPublicOnly {
			defs = publicOnly(defs)
		}

		descriptors := make([]sdk.Descriptor, 0, len(defs))
		for _, def := range defs {
			descriptors = append(descriptors, sdk.Describe(def))
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, descriptors)
		}
		if len(descriptors) == 0 {
			fmt.Fprintln(out, "No capabilities found.")
			return nil
		}
		for _, d := range descriptors {
			visibility := "private"
			if d.Public {
				visibility = "public"
			}
			fmt.Fprintf(out, "%-32s %-8s %s\n", d.Key, visibility, d.Description)
		}
		return nil
	},
}

func publicOnly(defs []sdk.Definition) []sdk.Definition {
	out := defs[:0]
	for _, def := range defs {
		if def.IsPublic() {
			out = append(out, def)
		}
	}
	return out
}

func init() {
	listCmd.Flags().StringVar(&listMatch, "match", "", "glob pattern on capability keys")
	listCmd.Flags().BoolVar(&listPublicOnly, "public", false, "only public capabilities")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
