package product

import (
	"github.com/vendly/vendly/internal/product/repository"
	"github.com/vendly/vendly/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
