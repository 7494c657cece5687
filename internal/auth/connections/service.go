// Package connections answers questions about connected accounts.
package connections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/auth/store"
	"github.com/brizzai/social-manager/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by Export for anything but yaml or json
var ErrUnknownFormat = errors.New("unknown export format")

type Service struct {
	store store.TokenStore
}

// NewService creates a new connection query service
func NewService(tokens store.TokenStore) *Service {
	return &Service{store: tokens}
}

// List returns every connection without access tokens
func (s *Service) List(ctx context.Context) ([]models.Connection, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	result := make([]models.Connection, 0, len(records))
	for _, record := range records {
		result = append(result, record.Connection())
	}
	return result, nil
}

// Lookup returns the connection stored for the id, whatever its provider
func (s *Service) Lookup(ctx context.Context, providerUserID string) (models.Connection, error) {
	record, err := s.store.Get(ctx, providerUserID)
	if err != nil {
		return models.Connection{}, err
	}
	return record.Connection(), nil
}

// Check reports whether the id is connected under exactly this provider
func (s *Service) Check(ctx context.Context, provider models.Provider, providerUserID string) (models.ConnectionStatus, error) {
	record, err := s.store.Get(ctx, providerUserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ConnectionStatus{}, nil
	}
	if err != nil {
		return models.ConnectionStatus{}, fmt.Errorf("failed to read token: %w", err)
	}
	if record.Provider != provider {
		return models.ConnectionStatus{}, nil
	}
	return models.ConnectionStatus{IsConnected: true, Username: record.Username}, nil
}

// Disconnect removes the record when it belongs to the provider.
// store.ErrNotFound is returned otherwise.
func (s *Service) Disconnect(ctx context.Context, provider models.Provider, providerUserID string) error {
	status, err := s.Check(ctx, provider, providerUserID)
	if err != nil {
		return err
	}
	if !status.IsConnected {
		return fmt.Errorf("%w: %s/%s", store.ErrNotFound, provider, providerUserID)
	}
	if err := s.store.Delete(ctx, providerUserID); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	logger.Info("Disconnected account",
		zap.String("provider", provider.String()),
		zap.String("user_id", providerUserID),
	)
	return nil
}

// Export writes the connection list as yaml or json
func (s *Service) Export(ctx context.Context, w io.Writer, format string) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	return Encode(w, format, list)
}

// Encode writes connections in the given format. The CLI uses it for
// lists fetched from a remote server.
func Encode(w io.Writer, format string, list []models.Connection) error {
	if list == nil {
		list = []models.Connection{}
	}
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any{"connections": list}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]any{"connections": list}); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Module provides the connection query service
var Module = fx.Module("connections",
	fx.Provide(NewService),
)
