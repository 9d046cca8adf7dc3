// Package clitest runs folio commands against an in-memory application.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/folio/adapter/cli"
	internalApp "github.com/felixgeelhaar/folio/internal/app"
	"github.com/felixgeelhaar/folio/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/folio/pkg/config"
)

// Config returns a development configuration backed by in-memory SQLite.
func Config() *config.Config {
	return &config.Config{
		AppEnv:                     "development",
		DatabaseDriver:             "sqlite",
		SQLitePath:                 database.MemoryPath,
		PageCacheTTL:               time.Minute,
		DefaultLocale:              "en",
		FallbackLocale:             "en",
		CapabilityTimeout:          time.Second,
		CapabilityFailureThreshold: 3,
		CapabilityBreakerEnabled:   true,
	}
}

// NewApp installs a fresh application as the global CLI app for the
// duration of the test.
func NewApp(t *testing.T) *cli.App {
	t.Helper()
	container, err := internalApp.NewContainer(context.Background(), Config(), nil)
	require.NoError(t, err)

	a := cli.NewApp(container)
	cli.SetApp(a)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return a
}

// Run executes cmd with args and returns what it printed.
// Flags of cmd and its subcommands are reset first, since cobra keeps
// them in package variables between executions.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	reset(cmd)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func reset(cmd *cobra.Command) {
	restore := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(restore)
	cmd.PersistentFlags().VisitAll(restore)
	for _, sub := range cmd.Commands() {
		reset(sub)
	}
}
