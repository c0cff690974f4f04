package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all process configuration for the chartfeed daemon. The chart
// store's per-instance options are derived from it at startup.
type Config struct {
	Symbol   string
	Interval string
	Provider string // "binance" or "postgres"
	LogLevel string

	ChartWidth          float64
	BarSpace            float64
	OffsetRightDistance float64

	Locale               string
	Timezone             string
	PricePrecision       int
	VolumePrecision      int
	ThousandsSeparator   string
	DecimalFoldThreshold int

	PageSize       int
	RequestTimeout time.Duration
	RequestsPerSec int
	LoadingTimeout time.Duration

	WSEndpoint string
	RecordBars bool

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load initializes configuration from environment variables, reading a .env
// file first when present. Invalid values fall back to their defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		Symbol:   getEnvWithDefault("SYMBOL", "BTCUSDT"),
		Interval: getEnvWithDefault("INTERVAL", "1m"),
		Provider: getEnvWithDefault("PROVIDER", "binance"),
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		ChartWidth:          getEnvFloatWithDefault("CHART_WIDTH", 1200),
		BarSpace:            getEnvFloatWithDefault("BAR_SPACE", 8),
		OffsetRightDistance: getEnvFloatWithDefault("OFFSET_RIGHT_DISTANCE", 80),

		Locale:               getEnvWithDefault("LOCALE", "en-US"),
		Timezone:             getEnvWithDefault("TIMEZONE", "UTC"),
		PricePrecision:       getEnvIntWithDefault("PRICE_PRECISION", 2),
		VolumePrecision:      getEnvIntWithDefault("VOLUME_PRECISION", 0),
		ThousandsSeparator:   getEnvWithDefault("THOUSANDS_SEPARATOR", ","),
		DecimalFoldThreshold: getEnvIntWithDefault("DECIMAL_FOLD_THRESHOLD", 3),

		PageSize:       getEnvIntWithDefault("PAGE_SIZE", 500),
		RequestTimeout: time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 30)) * time.Second,
		RequestsPerSec: getEnvIntWithDefault("REQUESTS_PER_SEC", 5),
		LoadingTimeout: time.Duration(getEnvIntWithDefault("LOADING_TIMEOUT", 60)) * time.Second,

		WSEndpoint: os.Getenv("WS_ENDPOINT"),
		RecordBars: getEnvBoolWithDefault("RECORD_BARS", false),

		PostgresHost:     getEnvWithDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvWithDefault("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnvWithDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnvWithDefault("POSTGRES_DB", "chartcore"),
		PostgresSSLMode:  getEnvWithDefault("POSTGRES_SSLMODE", "disable"),
	}

	return cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
