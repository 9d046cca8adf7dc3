package page

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/application/queries"
)

var (
	renderLocale string
	renderDrafts bool
	renderJSON   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <slug>",
	Short: "Render a page with its capability data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		page, err := a.RenderPageHandler.Handle(cmd.Context(), queries.RenderPageQuery{
			Slug:          args[0],
			Locale:        renderLocale,
			IncludeDrafts: renderDrafts,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if renderJSON {
			return cli.PrintJSON(out, page)
		}

		cli.Heading(out, fmt.Sprintf("%s (%s, %s)", page.Title, page.Slug, page.Locale), 50)
		if len(page.Sections) == 0 {
			fmt.Fprintln(out, "No sections.")
			return nil
		}
		for _, s := range page.Sections {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "[%s #%d] %s\n", s.Slot, s.Position, s.TemplateKey)
			fmt.Fprintln(out, strings.Repeat("-", 50))
			fields, err := json.MarshalIndent(s.Fields, "  ", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s\n", fields)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderLocale, "locale", "l", "", "render locale (default: the page locale)")
	renderCmd.Flags().BoolVar(&renderDrafts, "drafts", false, "render unpublished pages")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "output as JSON")
}
