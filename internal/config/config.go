// Package config содержит логику чтения конфигурации сервиса расчёта оплаты.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress         string `env:"RUN_ADDRESS"`
	DatabaseURI        string `env:"DATABASE_URI"`
	FeeScheduleAddress string `env:"FEE_SCHEDULE_ADDRESS"`

	AuthSecret string `env:"AUTH_SECRET"`

	Currency      string          `env:"CURRENCY" envDefault:"USD"`
	CurrencyScale int32           `env:"CURRENCY_SCALE" envDefault:"2"`
	TaxRate       decimal.Decimal `env:"TAX_RATE" envDefault:"0.075"`

	// Комиссии по умолчанию для продуктов, отсутствующих в каталоге.
	BookingFee        int64           `env:"BOOKING_FEE" envDefault:"0"`
	ProcessingPercent decimal.Decimal `env:"PROCESSING_PERCENT" envDefault:"0"`
	PaymentPlanFee    int64           `env:"PAYMENT_PLAN_FEE" envDefault:"0"`

	FeeRefreshInterval time.Duration `env:"FEE_REFRESH_INTERVAL" envDefault:"1m"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envFeeScheduleAddress := cfg.FeeScheduleAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.FeeScheduleAddress, "f", "", "fee schedule service address")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envFeeScheduleAddress != "" {
		cfg.FeeScheduleAddress = envFeeScheduleAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.CurrencyScale < 0 || c.CurrencyScale > 8:
		return fmt.Errorf("CURRENCY_SCALE out of range: %d", c.CurrencyScale)
	case c.TaxRate.IsNegative():
		return fmt.Errorf("TAX_RATE must not be negative: %s", c.TaxRate)
	case c.BookingFee < 0 || c.PaymentPlanFee < 0 || c.ProcessingPercent.IsNegative():
		return fmt.Errorf("default fees must not be negative")
	case c.FeeRefreshInterval <= 0:
		return fmt.Errorf("FEE_REFRESH_INTERVAL must be positive: %s", c.FeeRefreshInterval)
	}
	return nil
}
