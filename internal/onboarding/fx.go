package onboarding

import (
	"github.com/lancekit/lancekit/internal/onboarding/repository"
	"github.com/lancekit/lancekit/internal/onboarding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("onboarding.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
