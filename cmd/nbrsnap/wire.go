//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"nbrsnap/internal/ioc"
	"nbrsnap/internal/server"
)

func InitServer(ctx context.Context, opts ioc.Options) (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.ServeSet,
		server.NewHTTPServer,
	))
}

func InitCollectApp(ctx context.Context, opts ioc.Options) (*collectApp, func(), error) {
	panic(wire.Build(
		ioc.CollectorSet,
		ioc.InitCollectService,
		newCollectApp,
	))
}
