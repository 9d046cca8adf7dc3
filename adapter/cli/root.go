// Package cli implements the folio command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

// ErrNotInitialized is returned by commands that need the database when the
// application could not be wired.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

type commandContext struct {
	correlationID string
	startedAt     time.Time
}

type commandContextKey struct{}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - portfolio pages from section templates and capabilities",
	Long: `folio renders portfolio pages from configurable section templates.

Templates declare their fields and may bind a data source to a registered
capability, such as the visible projects or the contact channels.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		info := commandContext{
			correlationID: uuid.NewString(),
			startedAt:     time.Now(),
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = observability.WithCorrelationID(ctx, info.correlationID)
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		Logger().Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID,
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		Logger().Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID,
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}
