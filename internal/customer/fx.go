package customer

import (
	"github.com/vendly/vendly/internal/customer/repository"
	"github.com/vendly/vendly/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
