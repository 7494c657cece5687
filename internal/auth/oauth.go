package auth

import (
	"net/http"

	"github.com/brizzai/social-manager/internal/auth/callback"
	"github.com/brizzai/social-manager/internal/auth/connections"
	"github.com/brizzai/social-manager/internal/auth/exchange"
	"github.com/brizzai/social-manager/internal/auth/handlers"
	"github.com/brizzai/social-manager/internal/auth/middleware"
	"github.com/brizzai/social-manager/internal/auth/providers"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/config"
	"go.uber.org/fx"
)

// Service represents the social connection service
type Service struct {
	config  *config.CORSConfig
	handler *handlers.Handler
}

// NewService creates a new connection service
func NewService(cfg *config.CORSConfig, handler *handlers.Handler) *Service {
	return &Service{
		config:  cfg,
		handler: handler,
	}
}

// RegisterRoutes registers all connection-related routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	h := s.handler

	mux.HandleFunc("GET /{$}", h.HandleRoot)

	// Webhook handshake
	mux.HandleFunc("GET /instagram/webhook", h.HandleWebhookVerification)
	mux.HandleFunc("GET /auth/{provider}/verification-token", h.HandleVerificationToken)

	// OAuth endpoints
	mux.HandleFunc("GET /auth/providers", h.HandleProviders)
	mux.HandleFunc("GET /auth/{provider}/login", h.HandleLogin)
	mux.HandleFunc("GET /auth/{provider}/callback", h.HandleCallback)
	mux.HandleFunc("POST /auth/{provider}/exchange-token", h.HandleExchangeToken)
	mux.HandleFunc("POST /auth/{provider}/store-token", h.HandleStoreToken)

	// Connection queries
	mux.HandleFunc("GET /auth/user-tokens", h.HandleUserTokens)
	mux.HandleFunc("GET /auth/check-connection/{provider}/{userId}", h.HandleCheckConnection)
	mux.HandleFunc("DELETE /auth/connections/{provider}/{userId}", h.HandleDisconnect)

	mux.HandleFunc("POST /api/social/{provider}/{endpoint}", h.HandleSocialAPI)
}

// WrapWithMiddleware wraps the mux with CORS, logging and panic recovery
func (s *Service) WrapWithMiddleware(handler http.Handler) (http.Handler, error) {
	cors, err := middleware.CORS(s.config)
	if err != nil {
		return nil, err
	}
	return middleware.Recover(middleware.RequestLogger(cors(handler))), nil
}

// Module wires every package behind the HTTP API
var Module = fx.Module("auth",
	verification.Module,
	store.Module,
	providers.Module,
	exchange.Module,
	connections.Module,
	callback.Module,
	fx.Provide(
		handlers.NewHandler,
		NewService,
	),
)
