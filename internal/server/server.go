// Package server runs the HTTP server of the social connection backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/social-manager/internal/apidoc"
	"github.com/brizzai/social-manager/internal/auth"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/server/handler"
	"github.com/brizzai/social-manager/internal/server/tool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is the maximum time to wait for server shutdown
	defaultShutdownTimeout = 5 * time.Second
)

// Server represents the HTTP server instance
type Server struct {
	config  *config.ServerConfig
	handler http.Handler
	issuer  *verification.Issuer
}

type Params struct {
	fx.In

	Config    *config.ServerConfig
	MCPConfig *config.MCPConfig
	Auth      *auth.Service
	Docs      *apidoc.Document
	Issuer    *verification.Issuer
	MCP       *MCPServer
}

// NewServer creates the server and assembles its handler
func NewServer(p Params) (*Server, error) {
	var mcpHandler http.Handler
	if p.MCPConfig != nil && p.MCPConfig.Enabled && p.MCP != nil {
		mcpHandler = p.MCP.HTTPHandler()
	}

	h, err := handler.NewHandler(p.Auth, p.Docs).CreateHTTPHandler(mcpHandler)
	if err != nil {
		return nil, fmt.Errorf("failed to build http handler: %w", err)
	}

	return &Server{
		config:  p.Config,
		handler: h,
		issuer:  p.Issuer,
	}, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start listens on the configured address and serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Server listening",
			zap.String("address", listener.Addr().String()),
			zap.String("public_url", s.config.PublicURL()),
		)
		if s.issuer != nil {
			logger.Info("Webhook verification token", zap.String("token", s.issuer.Token()))
		}

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		logger.Info("Shutting down server", zap.Duration("timeout", timeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("Server stopped")
		return nil

	case err := <-errChan:
		return err
	}
}

// RegisterLifecycle starts the server with the fx application and stops
// it with the application. A serve error shuts the application down.
func RegisterLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *Server) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			listener, err := net.Listen("tcp", s.Addr())
			if err != nil {
				cancel()
				return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
			}
			go func() {
				defer close(done)
				if err := s.Serve(ctx, listener); err != nil {
					logger.Error("Server failed", zap.Error(err))
					if shutdownErr := shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
						logger.Error("Failed to shut down application", zap.Error(shutdownErr))
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// Module provides the server dependencies
var Module = fx.Module("server",
	apidoc.Module,
	fx.Provide(
		tool.NewHandler,
		NewMCPServer,
		NewServer,
	),
	fx.Invoke(RegisterLifecycle),
)
