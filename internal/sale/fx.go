package sale

import (
	"github.com/vendly/vendly/internal/sale/repository"
	"github.com/vendly/vendly/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
