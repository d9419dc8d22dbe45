package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds process-wide settings resolved once at startup.
type Config struct {
	AppPort                string
	DatabaseDriver         string // "postgres" or "sqlite"
	DatabaseDSN            string
	RabbitMQURL            string // empty disables event publishing
	StoreTimeout           time.Duration
	LogMode                string
	LowStockThreshold      int
	CriticalStockThreshold int
	DefaultPageLimit       int
	MaxPageLimit           int
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:inventory.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("CRITICAL_STOCK_THRESHOLD", 5)
	v.SetDefault("DEFAULT_PAGE_LIMIT", 10)
	v.SetDefault("MAX_PAGE_LIMIT", 100)
}

// Load reads configuration from environment variables, falling back to defaults.
func Load(v *viper.Viper) Config {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:                v.GetString("APP_PORT"),
		DatabaseDriver:         v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		RabbitMQURL:            v.GetString("RABBITMQ_URL"),
		StoreTimeout:           v.GetDuration("STORE_TIMEOUT"),
		LogMode:                v.GetString("LOG_MODE"),
		LowStockThreshold:      v.GetInt("LOW_STOCK_THRESHOLD"),
		CriticalStockThreshold: v.GetInt("CRITICAL_STOCK_THRESHOLD"),
		DefaultPageLimit:       v.GetInt("DEFAULT_PAGE_LIMIT"),
		MaxPageLimit:           v.GetInt("MAX_PAGE_LIMIT"),
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.DefaultPageLimit <= 0 {
		cfg.DefaultPageLimit = 10
	}
	if cfg.MaxPageLimit < cfg.DefaultPageLimit {
		cfg.MaxPageLimit = cfg.DefaultPageLimit
	}
	return cfg
}
