package client

import (
	"github.com/lancekit/lancekit/internal/client/repository"
	"github.com/lancekit/lancekit/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
