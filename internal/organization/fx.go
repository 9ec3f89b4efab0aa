package organization

import (
	"github.com/vendly/vendly/internal/organization/repository"
	"github.com/vendly/vendly/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
