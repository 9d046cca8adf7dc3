// Package mcp holds the "folio mcp" commands.
package mcp

import "github.com/spf13/cobra"

// Cmd groups the MCP commands. Register it with cli.AddCommand.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose capabilities and pages to MCP clients",
	Args:  cobra.NoArgs,
}

func init() {
	Cmd.AddCommand(serveCmd)
}
