package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	folioMCP "github.com/felixgeelhaar/folio/adapter/mcp"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server over HTTP.

Every public capability is exposed as a tool named after its key. Section
templates are published as resources under folio://templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := a.Container().Start(ctx); err != nil {
			return err
		}

		cfg := *a.Config
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		err = folioMCP.Serve(ctx, &cfg, a.MCPDependencies(), cli.Version, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default MCP_ADDR)")
}
