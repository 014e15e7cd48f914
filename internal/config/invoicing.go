package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig holds the tunable defaults applied to new invoice drafts.
type InvoicingConfig struct {
	NumberPrefix       string  `mapstructure:"numberPrefix"`
	DefaultTaxPercent  float64 `mapstructure:"defaultTaxPercent"`
	FallbackHourlyRate float64 `mapstructure:"fallbackHourlyRate"`
	DefaultDueDays     int     `mapstructure:"defaultDueDays"`
	DefaultCurrency    string  `mapstructure:"defaultCurrency"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		NumberPrefix:       "INV",
		DefaultTaxPercent:  10,
		FallbackHourlyRate: 1,
		DefaultDueDays:     14,
		DefaultCurrency:    "USD",
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/lancekit")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LANCEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoicingConfig()
	v.SetDefault("invoicing.numberPrefix", defaults.NumberPrefix)
	v.SetDefault("invoicing.defaultTaxPercent", defaults.DefaultTaxPercent)
	v.SetDefault("invoicing.fallbackHourlyRate", defaults.FallbackHourlyRate)
	v.SetDefault("invoicing.defaultDueDays", defaults.DefaultDueDays)
	v.SetDefault("invoicing.defaultCurrency", defaults.DefaultCurrency)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if strings.TrimSpace(cfg.NumberPrefix) == "" {
		return errors.New("invoicing.numberPrefix cannot be empty")
	}
	if cfg.DefaultTaxPercent < 0 || cfg.DefaultTaxPercent > 100 {
		return errors.New("invoicing.defaultTaxPercent must be between 0 and 100")
	}
	if cfg.FallbackHourlyRate <= 0 {
		return errors.New("invoicing.fallbackHourlyRate must be positive")
	}
	return nil
}
