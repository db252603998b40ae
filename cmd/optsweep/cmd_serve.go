package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"optsweep/internal/logging"
	mcpserver "optsweep/internal/mcp"
	"optsweep/internal/store"
)

var serveDBPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing run_sweep, list_runs,
get_run, and validate_instance tools.

The server monitors for parent process death. When the client disconnects,
the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDBPath, "db", store.DefaultDBPath, "Run-history DB path")
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := mcpserver.NewServer(serveDBPath)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting optsweep MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
