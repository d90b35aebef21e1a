package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/wakala/sellerperf/internal/analysis"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port             string
	DBPath           string
	LogLevel         string
	LogFormat        string
	RevenueStrategy  string
	BonusStrategy    string
	SeedPath         string
	MetricsNamespace string
}

// Load reads configuration from environment variables and an optional .env
// file. Strategy names are resolved eagerly so a typo fails at startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		Port:             valueOrDefault(k.String("PORT"), "8080"),
		DBPath:           valueOrDefault(k.String("DB_PATH"), "sellerperf.db"),
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat:        valueOrDefault(k.String("LOG_FORMAT"), "json"),
		RevenueStrategy:  valueOrDefault(k.String("REVENUE_STRATEGY"), analysis.RevenueSimple),
		BonusStrategy:    valueOrDefault(k.String("BONUS_STRATEGY"), analysis.BonusProfitRanked),
		SeedPath:         valueOrDefault(k.String("SEED_PATH"), "testdata/sample_dataset.json"),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "sellerperf"),
	}

	if _, err := cfg.Strategies(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Strategies resolves the configured revenue and bonus strategies.
func (c *Config) Strategies() (analysis.Strategies, error) {
	return analysis.LookupStrategies(c.RevenueStrategy, c.BonusStrategy)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
