package callback

import (
	"github.com/brizzai/social-manager/internal/auth/exchange"
	"github.com/brizzai/social-manager/internal/auth/verification"
	"github.com/brizzai/social-manager/internal/config"
	"go.uber.org/fx"
)

// NewLocalController wires the controller to the in-process issuer and
// exchange service
func NewLocalController(issuer *verification.Issuer, svc *exchange.Service, cfg *config.CallbackConfig) *Controller {
	return NewController(issuer, svc, cfg)
}

// Module provides the server-side callback controller
var Module = fx.Module("callback",
	fx.Provide(NewLocalController),
)
