package plan

import (
	"github.com/vendly/vendly/internal/plan/repository"
	"github.com/vendly/vendly/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
