// Package config loads the service configuration from environment
// variables, typically populated from a .env file by the entrypoint.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
}

// ProfilingConfig toggles the pprof sidecar server.
type ProfilingConfig struct {
	Enabled bool
	Port    int
}

// ObservabilityConfig toggles the metrics endpoint.
type ObservabilityConfig struct {
	MetricsEnabled bool
}

// SheetConfig holds the spreadsheet defaults and capability codes.
type SheetConfig struct {
	// DefaultDocID is the document served when a request names none.
	DefaultDocID string
	// PersonalCode unlocks the personal agenda bucket.
	PersonalCode string
	// RestrictedCode unlocks restricted-visibility rows.
	RestrictedCode string
	// SamplePath, when set, serves a local CSV instead of fetching.
	SamplePath string
	// ExchangeRates are per-currency NT$ rate overrides, e.g. "USD=31.8,JPY=0.21".
	ExchangeRates map[string]decimal.Decimal
}

// Config is the full service configuration.
type Config struct {
	Server        ServerConfig
	Profiling     ProfilingConfig
	Observability ObservabilityConfig
	Sheet         SheetConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	rates, err := parseRates(getEnv("SHEET_EXCHANGE_RATES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),
		},
		Profiling: ProfilingConfig{
			Enabled: getEnvBool("PPROF_ENABLED", false),
			Port:    getEnvInt("PPROF_PORT", 6060),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
		Sheet: SheetConfig{
			DefaultDocID:   getEnv("SHEET_DEFAULT_DOC_ID", ""),
			PersonalCode:   getEnv("SHEET_PERSONAL_CODE", "1912"),
			RestrictedCode: getEnv("SHEET_RESTRICTED_CODE", "666"),
			SamplePath:     getEnv("SHEET_SAMPLE_PATH", ""),
			ExchangeRates:  rates,
		},
	}
	return cfg, nil
}

// parseRates parses "CODE=rate" pairs separated by commas.
func parseRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	if strings.TrimSpace(raw) == "" {
		return rates, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid exchange rate %q", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate %q: %w", pair, err)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
