package server

import (
	"net/http"

	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/server/tool"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// MCPServer exposes the connection tools to MCP clients
type MCPServer struct {
	mcp  *mcpserver.MCPServer
	tool *tool.Handler
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(cfg *config.MCPConfig, tools *tool.Handler) *MCPServer {
	mcpServer := mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(false),
	)

	srv := &MCPServer{
		mcp:  mcpServer,
		tool: tools,
	}
	srv.setupTools()
	return srv
}

func (s *MCPServer) setupTools() {
	for _, t := range tool.Tools() {
		handler := s.tool.HandlerFor(t.Name)
		if handler == nil {
			logger.Error("No handler for tool", zap.String("tool", t.Name))
			continue
		}
		logger.Debug("Adding tool", zap.String("name", t.Name))
		s.mcp.AddTool(t, handler)
	}
}

// HTTPHandler returns the streamable HTTP transport for the server
func (s *MCPServer) HTTPHandler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcp)
}

// Core returns the underlying mcp-go server
func (s *MCPServer) Core() *mcpserver.MCPServer {
	return s.mcp
}
