// Package config loads service configuration from the environment, with a
// local .env file honoured in development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full configuration of the order gateway.
type Config struct {
	HTTPAddr       string
	CatalogBaseURL string
	RedisAddr      string
	SQLitePath     string

	// SnapshotCacheTTL bounds how long a cached snapshot may serve as the
	// fallback when the catalog API is down.
	SnapshotCacheTTL time.Duration

	// Messaging handoff.
	MessagingBaseURL string
	// BusinessWhatsApp is the destination address as entered in business
	// settings; normalization happens at link-build time.
	BusinessWhatsApp string

	// Business presentation.
	BusinessName   string
	CurrencySymbol string
	ThousandsSep   string
	DecimalSep     string
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit env vars always win over file values.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	return &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CatalogBaseURL:   getEnv("CATALOG_API_URL", "http://localhost:8090"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/orders.db"),
		SnapshotCacheTTL: getEnvAsDuration("SNAPSHOT_CACHE_TTL", 24*time.Hour),
		MessagingBaseURL: getEnv("MESSAGING_BASE_URL", "https://wa.me"),
		BusinessWhatsApp: getEnv("BUSINESS_WHATSAPP", ""),
		BusinessName:     getEnv("BUSINESS_NAME", "MenuLink"),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "₺"),
		ThousandsSep:     getEnv("THOUSANDS_SEP", "."),
		DecimalSep:       getEnv("DECIMAL_SEP", ","),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration, using fallback", "key", key, "value", raw)
	return fallback
}
