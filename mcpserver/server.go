package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/execbox/execbox/config"
	"github.com/execbox/execbox/sandbox"
	"github.com/execbox/execbox/sandbox/registry"
)

// Engine is the execution entry point the server forwards tool calls to.
type Engine interface {
	Execute(ctx context.Context, req sandbox.ExecuteRequest) (sandbox.ExecuteResult, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	engine    Engine
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, reg *registry.Registry, engine Engine) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		engine: engine,
	}

	languages := reg.Languages()
	sort.Strings(languages)

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.Int("engine.pool_size", cfg.Engine.PoolSize),
		zap.Int("engine.queue_depth", cfg.Engine.QueueDepth),
		zap.Int("engine.default_timeout_ms", cfg.Engine.DefaultTimeoutMs),
		zap.Int("engine.max_timeout_ms", cfg.Engine.MaxTimeoutMs),
		zap.Int("engine.default_max_output_bytes", cfg.Engine.DefaultMaxOutputBytes),
		zap.Int("engine.max_output_bytes", cfg.Engine.MaxOutputBytes),
		zap.Strings("languages", languages),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("execbox", "A sandboxed multi-language code execution server")

	// Register the execute_code tool
	s.registerExecuteCodeTool(languages)

	return s, nil
}

// registerExecuteCodeTool registers the execute_code tool
func (s *MCPServer) registerExecuteCodeTool(languages []string) {
	tool := mcp.Tool{
		Name:        "execute_code",
		Description: "Execute source code in an isolated, time- and resource-bounded environment",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Guest language identifier",
					"enum":        languages,
				},
				"source": map[string]any{
					"type":        "string",
					"description": "Source code to build and run",
				},
				"stdin": map[string]any{
					"type":        "string",
					"description": "Standard input fed to the program (optional)",
				},
				"timeout_ms": map[string]any{
					"type":        "number",
					"description": "Wall-clock timeout override in milliseconds, capped by the system maximum (optional)",
				},
				"max_output_bytes": map[string]any{
					"type":        "number",
					"description": "Per-stream output cap override in bytes, capped by the system maximum (optional)",
				},
			},
			Required: []string{"language", "source"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteCode)
}

// handleExecuteCode handles the execute_code tool
func (s *MCPServer) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	language, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	source, err := request.RequireString("source")
	if err != nil {
		return nil, fmt.Errorf("source parameter is required: %w", err)
	}

	req := sandbox.ExecuteRequest{
		Language:       language,
		Source:         source,
		Stdin:          request.GetString("stdin", ""),
		TimeoutMs:      request.GetInt("timeout_ms", 0),
		MaxOutputBytes: request.GetInt("max_output_bytes", 0),
	}

	s.logger.Info("code execution requested",
		zap.String("language", language),
		zap.Int("source_len", len(source)),
		zap.Int("timeout_ms", req.TimeoutMs))

	result, err := s.engine.Execute(ctx, req)
	if err != nil {
		s.logger.Error("execution aborted",
			zap.Error(err),
			zap.String("language", language))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Execution aborted: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	s.logger.Info("code execution completed",
		zap.String("language", language),
		zap.String("status", string(result.Status)),
		zap.Int64("duration_ms", result.DurationMs))

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
