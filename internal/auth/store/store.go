// Package store keeps the access tokens obtained from providers.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/brizzai/social-manager/internal/auth/models"
	"go.uber.org/fx"
)

// ErrNotFound is returned when no record exists for a provider user id
var ErrNotFound = errors.New("token record not found")

// TokenStore maps provider user ids to token records.
// Upsert overwrites any previous record for the same id.
type TokenStore interface {
	Upsert(ctx context.Context, record models.TokenRecord) error
	Get(ctx context.Context, providerUserID string) (models.TokenRecord, error)
	List(ctx context.Context) ([]models.TokenRecord, error)
	Delete(ctx context.Context, providerUserID string) error
}

// Ensure MemoryStore implements TokenStore
var _ TokenStore = (*MemoryStore)(nil)

// MemoryStore is a process-lifetime TokenStore
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.TokenRecord
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.TokenRecord),
	}
}

// Upsert stores the record, replacing any prior one for the same id
func (s *MemoryStore) Upsert(_ context.Context, record models.TokenRecord) error {
	if record.ProviderUserID == "" {
		return errors.New("token record needs a provider user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ProviderUserID] = record
	return nil
}

// Get returns the record for the id or ErrNotFound
func (s *MemoryStore) Get(_ context.Context, providerUserID string) (models.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[providerUserID]
	if !ok {
		return models.TokenRecord{}, ErrNotFound
	}
	return record, nil
}

// List returns a copy of every record, ordered by provider then id
func (s *MemoryStore) List(_ context.Context) ([]models.TokenRecord, error) {
	s.mu.RLock()
	records := make([]models.TokenRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Provider != records[j].Provider {
			return records[i].Provider < records[j].Provider
		}
		return records[i].ProviderUserID < records[j].ProviderUserID
	})
	return records, nil
}

// Delete removes the record for the id
func (s *MemoryStore) Delete(_ context.Context, providerUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[providerUserID]; !ok {
		return ErrNotFound
	}
	delete(s.records, providerUserID)
	return nil
}

// Len reports the number of records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Module provides a single MemoryStore as the TokenStore
var Module = fx.Module("store",
	fx.Provide(
		fx.Annotate(
			NewMemoryStore,
			fx.As(new(TokenStore)),
		),
	),
)
