package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	clientdomain "github.com/lancekit/lancekit/internal/client/domain"
	"github.com/lancekit/lancekit/internal/config"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
	onboardingdomain "github.com/lancekit/lancekit/internal/onboarding/domain"
	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
	"github.com/lancekit/lancekit/internal/seed"
)

func apply(conn *gorm.DB, cfg config.Config) error {
	// The SQL files are written for postgres; sqlite and mysql are dev-only
	// conveniences and schema themselves from the models.
	if cfg.DBType != "postgres" {
		return conn.AutoMigrate(
			&authdomain.User{},
			&clientdomain.Client{},
			&projectdomain.Project{},
			&projectdomain.Task{},
			&invoicedomain.Invoice{},
			&invoicedomain.InvoiceItem{},
			&invoicedomain.NumberSequence{},
			&paymentdomain.Payment{},
			&notificationdomain.Notification{},
			&onboardingdomain.Onboarding{},
		)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := apply(conn, cfg); err != nil {
			return err
		}
		if !cfg.IsProduction() {
			return seed.EnsureDemoUser(conn)
		}
		return nil
	}),
)
