// Package handler assembles the HTTP handler served by the server.
package handler

import (
	"net/http"

	"github.com/brizzai/social-manager/internal/apidoc"
	"github.com/brizzai/social-manager/internal/auth"
	"github.com/brizzai/social-manager/internal/logger"
)

// MCPPath is where the MCP transport is mounted
const MCPPath = "/mcp"

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	auth *auth.Service
	docs *apidoc.Document
}

// NewHandler creates a new HTTP handler.
func NewHandler(auth *auth.Service, docs *apidoc.Document) *Handler {
	return &Handler{
		auth: auth,
		docs: docs,
	}
}

// CreateHTTPHandler registers the API routes, the API document and, when
// mcpHandler is not nil, the MCP transport, then applies the middleware stack.
func (h *Handler) CreateHTTPHandler(mcpHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	h.auth.RegisterRoutes(mux)
	if h.docs != nil {
		mux.Handle("GET /openapi.json", h.docs)
	}

	if mcpHandler != nil {
		mux.Handle(MCPPath, mcpHandler)
		logger.Info("Enabled MCP endpoint")
	}

	return h.auth.WrapWithMiddleware(mux)
}
