package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string
	SourceDir   string

	YahooURL            string
	CoinGeckoURL        string
	ProviderRetryMax    int
	ProviderBaseDelay   time.Duration
	MatchCacheTTL       time.Duration
	RunHashTTL          time.Duration
	DataSourceOrder     []string
	ExpectedCurrency    string
	DustThreshold       decimal.Decimal
	FoldStakeRewards    bool
	SyncInterval        time.Duration
	ReportFile          string
	SheetsSpreadsheetID string
	GoogleCredentials   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:         envOrDefaultWarn("DATABASE_URL", ""),
		SourceDir:           envOrDefault("SOURCE_DIR", "./data"),
		YahooURL:            envOrDefault("YAHOO_URL", "https://query2.finance.yahoo.com"),
		CoinGeckoURL:        envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		ProviderRetryMax:    envOrDefaultInt("PROVIDER_RETRY_MAX", 5),
		ProviderBaseDelay:   envOrDefaultDuration("PROVIDER_RETRY_BASE_DELAY", 1*time.Second),
		MatchCacheTTL:       envOrDefaultDuration("MATCH_CACHE_TTL", 10*time.Minute),
		RunHashTTL:          envOrDefaultDuration("RUN_HASH_TTL", 1*time.Hour),
		DataSourceOrder:     envOrDefaultList("DATA_SOURCE_ORDER", []string{"YAHOO", "COINGECKO"}),
		ExpectedCurrency:    envOrDefault("EXPECTED_CURRENCY", ""),
		DustThreshold:       envOrDefaultDecimal("DUST_THRESHOLD", decimal.NewFromFloat(0.01)),
		FoldStakeRewards:    envOrDefaultBool("FOLD_STAKE_REWARDS", false),
		SyncInterval:        envOrDefaultDuration("SYNC_INTERVAL", 1*time.Hour),
		ReportFile:          envOrDefault("REPORT_FILE", "holdings.xlsx"),
		SheetsSpreadsheetID: envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentials:   envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
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

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
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

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultList(key string, defaultVal []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}
