package providers

import (
	"fmt"
	"sort"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/brizzai/social-manager/internal/config"
	"github.com/brizzai/social-manager/internal/logger"
	"github.com/brizzai/social-manager/internal/requester"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Registry resolves providers by name
type Registry struct {
	providers map[models.Provider]Provider
}

// NewRegistry builds a registry from already constructed providers
func NewRegistry(list ...Provider) *Registry {
	r := &Registry{providers: make(map[models.Provider]Provider, len(list))}
	for _, p := range list {
		r.providers[p.Name()] = p
	}
	return r
}

// NewRegistryFromConfig creates a GenericProvider for every enabled provider.
// Names outside models.KnownProviders are skipped.
func NewRegistryFromConfig(cfg map[string]config.ProviderConfig, doer Doer) *Registry {
	r := NewRegistry()
	for name, pc := range cfg {
		if !pc.Enabled {
			continue
		}
		provider, err := models.ParseProvider(name)
		if err != nil {
			logger.Warn("Skipping provider", zap.String("provider", name), zap.Error(err))
			continue
		}
		r.providers[provider] = NewGenericProvider(provider, pc, doer)
		logger.Debug("Registered provider",
			zap.String("provider", name),
			zap.Bool("has_credentials", pc.HasCredentials()),
		)
	}
	return r
}

// Get returns the provider or ErrUnsupportedProvider
func (r *Registry) Get(name models.Provider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not enabled", models.ErrUnsupportedProvider, name)
	}
	return p, nil
}

// Names lists the registered providers in alphabetical order
func (r *Registry) Names() []models.Provider {
	names := make([]models.Provider, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

type RegistryParams struct {
	fx.In

	Config    *config.Config
	Requester *requester.HTTPRequester
}

// Module provides the provider registry
var Module = fx.Module("providers",
	fx.Provide(func(p RegistryParams) *Registry {
		return NewRegistryFromConfig(p.Config.Providers, p.Requester)
	}),
)
