//go:build wireinject
// +build wireinject

package main

import (
	"Discodeit/config"
	"Discodeit/dao"
	"Discodeit/handler"
	"Discodeit/pkg/client"
	"Discodeit/pkg/database"
	"Discodeit/pkg/server"
	"Discodeit/service"

	"github.com/google/wire"
)

func InitServer(cfg *config.Config) *server.AppProvider {
	wire.Build(
		database.NewDB,
		client.NewRedisClient,
		server.NewGinEngine,

		dao.ProviderSet,
		service.ProviderSet,

		wire.Struct(new(handler.ReadStatus), "*"),
		wire.Struct(new(server.Handlers), "*"),
		wire.Struct(new(server.AppProvider), "*"),
	)
	return nil
}
