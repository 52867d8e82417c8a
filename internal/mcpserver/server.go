// Package mcpserver exposes the selector and calibration core as a
// stdio Model Context Protocol server, so agent front-ends (Claude
// Desktop, Cursor, etc.) can drive select_models, recommend_per_category,
// and calibrate without shelling out to the CLI.
package mcpserver

import (
	"context"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Pavelevich/llm-checker/internal/runtime"
)

// Server wraps the MCP server instance plus the handles its tools dial
// into (runtime client, clock). No package-level state: every handle is
// injected at construction.
type Server struct {
	mcpServer *server.MCPServer
	client    *runtime.Client
	now       func() time.Time
}

// NewServer creates a new MCP server with registered tools, bound to
// ollamaURL for any probe/calibration tool call that needs a live
// generation.
func NewServer(version, ollamaURL string) *Server {
	s := server.NewMCPServer("llm-checker", version, server.WithLogging())

	srv := &Server{
		mcpServer: s,
		client:    runtime.NewClient(ollamaURL),
		now:       time.Now,
	}
	srv.registerTools()
	return srv
}

// Start runs the server in stdio mode (blocking) until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	selectTool := mcp.NewTool("select_models",
		mcp.WithDescription("Rank candidate (model, quantization) pairs for a task category on this machine's detected hardware. Returns fit/speed/quality-scored candidates with a short rationale per pick."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Task category: coding, reasoning, multimodal, creative, talking, reading, general, summarization, or embeddings"),
		),
		mcp.WithString("optimize_for",
			mcp.Description("Scoring objective: balanced, speed, quality, or context"),
			mcp.DefaultString("balanced"),
		),
		mcp.WithString("runtime",
			mcp.Description("Target inference runtime for MoE overhead and full-calibration eligibility"),
			mcp.DefaultString("ollama"),
		),
		mcp.WithNumber("top_n",
			mcp.Description("Number of candidates to return (0 = category default of 5)"),
		),
		mcp.WithBoolean("probe",
			mcp.Description("Validate the estimated speed with a short live generation per top candidate"),
		),
	)
	s.mcpServer.AddTool(selectTool, s.handleSelectModels)

	recommendTool := mcp.NewTool("recommend_per_category",
		mcp.WithDescription("Rank candidates for every fixed task category at once and produce a hardware-tier summary with quick-start commands."),
		mcp.WithString("optimize_for",
			mcp.Description("Scoring objective: balanced, speed, quality, or context"),
			mcp.DefaultString("balanced"),
		),
		mcp.WithString("runtime",
			mcp.Description("Target inference runtime"),
			mcp.DefaultString("ollama"),
		),
	)
	s.mcpServer.AddTool(recommendTool, s.handleRecommendPerCategory)

	calibrateTool := mcp.NewTool("calibrate",
		mcp.WithDescription("Run a prompt suite against one or more models on a live inference daemon and report latency/throughput/quality, or validate the suite without dispatching (dry-run/contract-only)."),
		mcp.WithString("suite_path",
			mcp.Required(),
			mcp.Description("Path to a line-delimited JSON prompt suite"),
		),
		mcp.WithString("models",
			mcp.Required(),
			mcp.Description("Comma-separated model identifiers to calibrate"),
		),
		mcp.WithString("mode",
			mcp.Description("Execution mode: dry-run, contract-only, or full"),
			mcp.DefaultString("dry-run"),
			mcp.Enum("dry-run", "contract-only", "full"),
		),
		mcp.WithString("runtime",
			mcp.Description("Runtime to calibrate against; full mode currently requires ollama"),
			mcp.DefaultString("ollama"),
		),
		mcp.WithString("objective",
			mcp.Description("Scoring objective recorded on the calibration result"),
			mcp.DefaultString("balanced"),
		),
	)
	s.mcpServer.AddTool(calibrateTool, s.handleCalibrate)

	hwTool := mcp.NewTool("detect_hardware",
		mcp.WithDescription("Detect and normalize this host's CPU/GPU/memory into a HardwareProfile, including its budget and hardware tier."),
	)
	s.mcpServer.AddTool(hwTool, s.handleDetectHardware)
}
