package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/lancekit/lancekit/internal/config"
	"github.com/lancekit/lancekit/internal/logger"
	"github.com/lancekit/lancekit/internal/migration"
	"github.com/lancekit/lancekit/internal/server"
	"github.com/lancekit/lancekit/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
