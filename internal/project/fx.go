package project

import (
	"github.com/lancekit/lancekit/internal/project/repository"
	"github.com/lancekit/lancekit/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
