package purchase

import (
	"github.com/vendly/vendly/internal/purchase/repository"
	"github.com/vendly/vendly/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
