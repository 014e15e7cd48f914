package invoice

import (
	"github.com/lancekit/lancekit/internal/invoice/repository"
	"github.com/lancekit/lancekit/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
