package page

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
)

var (
	saveTitle     string
	saveLocale    string
	savePublished bool
)

var saveCmd = &cobra.Command{
	Use:   "save <slug>",
	Short: "Create or update a page",
	Long: `Create or update a page.

Examples:
  folio page save home --title Home --published
  folio page save over-mij --title "Over mij" --locale nl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		result, err := a.SavePageHandler.Handle(cmd.Context(), commands.SavePageCommand{
			Slug:      args[0],
			Title:     saveTitle,
			Locale:    saveLocale,
			Published: savePublished,
		})
		if err != nil {
			return err
		}

		verb := "Updated"
		if result.Created {
			verb = "Created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s page %s (%s)\n", verb, result.Slug, result.PageID)
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVarP(&saveTitle, "title", "t", "", "page title")
	saveCmd.Flags().StringVarP(&saveLocale, "locale", "l", "", "page locale")
	saveCmd.Flags().BoolVar(&savePublished, "published", false, "publish the page")
	_ = saveCmd.MarkFlagRequired("title")
}
