package billing

import (
	"github.com/vendly/vendly/internal/billing/domain"
	"github.com/vendly/vendly/internal/billing/service"
	"github.com/vendly/vendly/internal/billing/stripe"
	"github.com/vendly/vendly/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(func(cfg config.Config) domain.Verifier {
		return stripe.NewVerifier(cfg.StripeSigningSecret)
	}),
	fx.Provide(func(cfg config.Config) domain.ProviderClient {
		return stripe.NewClient(cfg.StripeAPIKey)
	}),
	fx.Provide(service.New),
)
