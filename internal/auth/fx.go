package auth

import (
	"time"

	"github.com/lancekit/lancekit/internal/auth/repository"
	"github.com/lancekit/lancekit/internal/auth/service"
	"github.com/lancekit/lancekit/internal/auth/token"
	"github.com/lancekit/lancekit/internal/config"
	"go.uber.org/fx"
)

func provideIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, time.Duration(cfg.AuthTokenTTLMin)*time.Minute)
}

var Module = fx.Module("auth.service",
	fx.Provide(provideIssuer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
