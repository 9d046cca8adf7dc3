package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		db := a.Container().DB
		names, err := migrations.Files(db.Driver())
		if err != nil {
			return err
		}
		if err := migrations.Run(cmd.Context(), db); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintf(out, "applied %s\n", name)
		}
		fmt.Fprintf(out, "%d migration(s) for %s\n", len(names), db.Driver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
