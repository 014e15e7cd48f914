package notification

import (
	"github.com/lancekit/lancekit/internal/notification/cache"
	"github.com/lancekit/lancekit/internal/notification/repository"
	"github.com/lancekit/lancekit/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(cache.NewUnreadCounter),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
