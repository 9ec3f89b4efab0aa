package auth

import (
	"github.com/vendly/vendly/internal/auth/repository"
	"github.com/vendly/vendly/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
