package page

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/application/commands"
	"github.com/felixgeelhaar/folio/internal/content/section"
)

var (
	sectionID       string
	sectionTemplate string
	sectionSlot     string
	sectionPosition int
	sectionAnchor   string
	sectionLocale   string
	sectionData     string
	sectionInactive bool
	sectionFrom     string
	sectionUntil    string
)

var sectionSaveCmd = &cobra.Command{
	Use:   "save <page-slug>",
	Short: "Create or update a section",
	Long: `Create or update a section on a page.

Data is a JSON object validated against the template's fields. Pass --id
to update an existing section.

Examples:
  folio section save home --template hero_primary --slot hero --data '{"title":"Hi"}'
  folio section save home --template project_highlight_list --slot main --data '{"max_items":3}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		command := commands.SaveSectionCommand{
			PageSlug:    args[0],
			TemplateKey: sectionTemplate,
			Slot:        sectionSlot,
			Position:    sectionPosition,
			Anchor:      sectionAnchor,
			Locale:      sectionLocale,
			Data:        section.Data{},
		}
		if sectionID != "" {
			id, err := uuid.Parse(sectionID)
			if err != nil {
				return fmt.Errorf("invalid section id: %w", err)
			}
			command.SectionID = id
		}
		if sectionData != "" {
			if err := json.Unmarshal([]byte(sectionData), &command.Data); err != nil {
				return fmt.Errorf("section data must be a JSON object: %w", err)
			}
		}
		if cmd.Flags().Changed("inactive") {
			active := !sectionInactive
			command.Active = &active
		}
		if command.VisibleFrom, err = parseTime(sectionFrom); err != nil {
			return err
		}
		if command.VisibleUntil, err = parseTime(sectionUntil); err != nil {
			return err
		}

		result, err := a.SaveSectionHandler.Handle(cmd.Context(), command)
		if err != nil {
			return err
		}

		verb := "Updated"
		if result.Created {
			verb = "Created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s section %s\n", verb, result.SectionID)
		return nil
	},
}

var sectionDeleteCmd = &cobra.Command{
	Use:     "delete <section-id>",
	Short:   "Delete a section",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid section id: %w", err)
		}
		if err := a.DeleteSectionHandler.Handle(cmd.Context(), commands.DeleteSectionCommand{SectionID: id}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted section %s\n", id)
		return nil
	},
}

// parseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates.
func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q, expected RFC 3339 or YYYY-MM-DD", s)
}

func init() {
	f := sectionSaveCmd.Flags()
	f.StringVar(&sectionID, "id", "", "section id to update")
	f.StringVar(&sectionTemplate, "template", "", "template key")
	f.StringVar(&sectionSlot, "slot", "", "page slot")
	f.IntVar(&sectionPosition, "position", 0, "position within the slot")
	f.StringVar(&sectionAnchor, "anchor", "", "anchor id")
	f.StringVar(&sectionLocale, "locale", "", "restrict the section to a locale")
	f.StringVarP(&sectionData, "data", "d", "", "section data as a JSON object")
	f.BoolVar(&sectionInactive, "inactive", false, "hide the section")
	f.StringVar(&sectionFrom, "visible-from", "", "first moment the section is visible")
	f.StringVar(&sectionUntil, "visible-until", "", "moment the section stops being visible")
	_ = sectionSaveCmd.MarkFlagRequired("template")
	_ = sectionSaveCmd.MarkFlagRequired("slot")
}
