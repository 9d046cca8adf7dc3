package page

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List pages, drafts included",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		pages, err := a.ListPagesHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, pages)
		}
		if len(pages) == 0 {
			fmt.Fprintln(out, "No pages found.")
			return nil
		}
		for _, p := range pages {
			status := "draft"
			if p.Published {
				status = "published"
			}
			fmt.Fprintf(out, "%-24s %-10s %s\n", p.Slug, status, p.Title)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
