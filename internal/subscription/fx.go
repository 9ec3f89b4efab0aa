package subscription

import (
	"github.com/vendly/vendly/internal/subscription/repository"
	"github.com/vendly/vendly/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
