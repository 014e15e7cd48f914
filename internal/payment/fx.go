package payment

import (
	"github.com/lancekit/lancekit/internal/config"
	"github.com/lancekit/lancekit/internal/payment/adapters/stripe"
	"github.com/lancekit/lancekit/internal/payment/domain"
	"github.com/lancekit/lancekit/internal/payment/repository"
	"github.com/lancekit/lancekit/internal/payment/service"
	"go.uber.org/fx"
)

func provideStripeAdapter(cfg config.Config) domain.Adapter {
	return stripe.New(cfg.StripeWebhookSecret)
}

var Module = fx.Module("payment.service",
	fx.Provide(
		fx.Annotate(provideStripeAdapter, fx.ResultTags(`group:"payment.adapters"`)),
	),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
