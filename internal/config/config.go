package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	RatesURL             string
	QuotesURL            string
	RatesRetryMax        int
	RatesRetryBaseDelay  time.Duration
	QuotesRetryMax       int
	QuotesRetryBaseDelay time.Duration
	BaseCurrency         string
	RateWorkerInterval   time.Duration
	QuoteWorkerInterval  time.Duration
	ReportWorkerInterval time.Duration
	HTTPPort             string
	AdminAPIKey          string
	SpreadsheetID        string
	GoogleCredentials    string
	XLSXExportDir        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:          envOrDefaultWarn("DATABASE_URL", ""),
		RatesURL:             envOrDefault("RATES_URL", "https://api.frankfurter.dev/v1"),
		QuotesURL:            envOrDefault("QUOTES_URL", ""),
		RatesRetryMax:        envOrDefaultInt("RATES_RETRY_MAX", 5),
		RatesRetryBaseDelay:  envOrDefaultDuration("RATES_RETRY_BASE_DELAY", 2*time.Second),
		QuotesRetryMax:       envOrDefaultInt("QUOTES_RETRY_MAX", 5),
		QuotesRetryBaseDelay: envOrDefaultDuration("QUOTES_RETRY_BASE_DELAY", 2*time.Second),
		BaseCurrency:         envOrDefault("BASE_CURRENCY", "USD"),
		RateWorkerInterval:   envOrDefaultDuration("RATE_WORKER_INTERVAL", 12*time.Hour),
		QuoteWorkerInterval:  envOrDefaultDuration("QUOTE_WORKER_INTERVAL", 1*time.Hour),
		ReportWorkerInterval: envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:          envOrDefault("ADMIN_API_KEY", ""),
		SpreadsheetID:        envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentials:    envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		XLSXExportDir:        envOrDefault("XLSX_EXPORT_DIR", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
