package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Pavelevich/llm-checker/internal/mcpserver"
)

// mcpCmd starts a Model Context Protocol server over stdio, so agent
// front-ends can drive select_models/recommend_per_category/calibrate
// directly instead of shelling out to this binary.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start a Model Context Protocol (MCP) server over stdio",
	Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP).
This lets AI agents (Claude Desktop, Cursor, etc.) call select_models,
recommend_per_category, calibrate, and detect_hardware directly.

Communication happens over standard input/output (stdio).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		version := Version
		if version == "" {
			version = "dev"
		}
		srv := mcpserver.NewServer(version, globalOllamaURL)
		return srv.Start(ctx)
	},
}
