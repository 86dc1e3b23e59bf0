// Package config loads application configuration from config files and
// PIVOTAL_-prefixed environment variables via viper, with an optional .env
// for local development.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Prefix        string        `mapstructure:"prefix"`
	DefaultTTL    time.Duration `mapstructure:"default_ttl"`
	JitterEnabled bool          `mapstructure:"jitter_enabled"`
	// ActiveRateCardTTL is short: admin edits must show near real time.
	ActiveRateCardTTL time.Duration `mapstructure:"active_rate_card_ttl"`
	// RateCardItemTTL is longer: the item catalogue changes rarely.
	RateCardItemTTL time.Duration `mapstructure:"rate_card_item_ttl"`
}

type PricingConfig struct {
	// DefaultTaxRate applies to explicit price overrides, as a percentage.
	DefaultTaxRate string `mapstructure:"default_tax_rate"`
	// TaxRates maps a rate card item's tax class to its percentage rate.
	TaxRates map[string]string `mapstructure:"tax_rates"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Development switches to the console encoder.
	Development bool `mapstructure:"development"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("pivotal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pivotal")

	v.SetEnvPrefix("PIVOTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pivotal.db")

	v.SetDefault("cache.prefix", "pivotal")
	v.SetDefault("cache.default_ttl", "5m")
	v.SetDefault("cache.jitter_enabled", true)
	v.SetDefault("cache.active_rate_card_ttl", "60s")
	v.SetDefault("cache.rate_card_item_ttl", "10m")

	v.SetDefault("pricing.default_tax_rate", "15")
	v.SetDefault("pricing.tax_rates", map[string]string{
		"standard": "15",
		"zero":     "0",
		"exempt":   "0",
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}
