package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/config"
	"github.com/vendly/vendly/internal/migration"
	"github.com/vendly/vendly/internal/observability"
	"github.com/vendly/vendly/internal/server"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
