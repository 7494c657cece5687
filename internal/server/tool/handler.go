// Package tool provides the MCP tools exposed over connected accounts.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brizzai/social-manager/internal/auth/connections"
	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Tool names
const (
	ListConnections   = "list_connections"
	CheckConnection   = "check_connection"
	DisconnectAccount = "disconnect_account"
)

// Handler answers tool calls with the connection query service
type Handler struct {
	connections *connections.Service
}

// NewHandler creates a new tool handler.
func NewHandler(svc *connections.Service) *Handler {
	return &Handler{connections: svc}
}

// Tools returns the tool definitions
func Tools() []mcp.Tool {
	providerNames := make([]string, 0, len(models.KnownProviders))
	for _, p := range models.KnownProviders {
		providerNames = append(providerNames, p.String())
	}

	return []mcp.Tool{
		mcp.NewTool(ListConnections,
			mcp.WithDescription("List every connected social account. Access tokens are never included."),
		),
		mcp.NewTool(CheckConnection,
			mcp.WithDescription("Check whether a provider user id is connected under the given provider."),
			mcp.WithString("provider", mcp.Required(), mcp.Enum(providerNames...), mcp.Description("Social platform")),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Provider user id")),
		),
		mcp.NewTool(DisconnectAccount,
			mcp.WithDescription("Remove a connected account and forget its access token."),
			mcp.WithString("provider", mcp.Required(), mcp.Enum(providerNames...), mcp.Description("Social platform")),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Provider user id")),
		),
	}
}

// HandlerFor returns the function serving the named tool
func (h *Handler) HandlerFor(name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch name {
	case ListConnections:
		return h.listConnections
	case CheckConnection:
		return h.checkConnection
	case DisconnectAccount:
		return h.disconnect
	default:
		return nil
	}
}

func (h *Handler) listConnections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.connections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return jsonResult(map[string]any{"connections": list})
}

func (h *Handler) checkConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	provider, userID, errResult := accountArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	status, err := h.connections.Check(ctx, provider, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check connection: %w", err)
	}
	return jsonResult(status)
}

func (h *Handler) disconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	provider, userID, errResult := accountArguments(request)
	if errResult != nil {
		return errResult, nil
	}
	err := h.connections.Disconnect(ctx, provider, userID)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No %s account with id %s is connected", provider, userID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to disconnect: %w", err)
	}
	logger.Info("Disconnected account through MCP", zap.String("provider", provider.String()), zap.String("user_id", userID))
	return mcp.NewToolResultText(fmt.Sprintf("Disconnected %s account %s", provider, userID)), nil
}

func accountArguments(request mcp.CallToolRequest) (models.Provider, string, *mcp.CallToolResult) {
	args := request.GetArguments()
	rawProvider, _ := args["provider"].(string)
	userID, _ := args["user_id"].(string)
	if strings.TrimSpace(userID) == "" {
		return "", "", mcp.NewToolResultError("user_id is required")
	}
	provider, err := models.ParseProvider(rawProvider)
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return provider, userID, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
