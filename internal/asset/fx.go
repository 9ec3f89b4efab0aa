package asset

import (
	"github.com/vendly/vendly/internal/asset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("asset.service",
	fx.Provide(service.New),
)
