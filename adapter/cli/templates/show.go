package templates

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/content/template"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a section template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		tmpl, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown template: %s", args[0])
		}

		out := cmd.OutOrStdout()
		if showJSON {
			return cli.PrintJSON(out, tmpl)
		}

		cli.Heading(out, "Template: "+tmpl.Key, 50)
		if tmpl.Label != "" {
			fmt.Fprintf(out, "  Label:  %s\n", tmpl.Label)
		}
		if tmpl.Description != "" {
			fmt.Fprintf(out, "  About:  %s\n", tmpl.Description)
		}
		fmt.Fprintf(out, "  Slots:  %s\n", strings.Join(tmpl.AllowedSlots, ", "))
		if ds := tmpl.DataSource; ds != nil {
			fmt.Fprintf(out, "  Source: %s -> %s\n", ds.CapabilityKey, ds.TargetField)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Fields")
		fmt.Fprintln(out, strings.Repeat("-", 50))
		printFields(cmd, tmpl.Fields, "  ")
		return nil
	},
}

func printFields(cmd *cobra.Command, fields []template.FieldDefinition, indent string) {
	out := cmd.OutOrStdout()
	for _, f := range fields {
		line := fmt.Sprintf("%s%-16s %-10s", indent, f.Name, f.Type)
		if f.Required {
			line += " required"
		}
		if f.HasDefault() {
			line += fmt.Sprintf(" default=%v", f.Default)
		}
		if len(f.Validation) > 0 {
			line += " [" + strings.Join(f.Validation, "|") + "]"
		}
		fmt.Fprintln(out, line)
		if len(f.ItemFields) > 0 {
			printFields(cmd, f.ItemFields, indent+"  ")
		}
	}
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
