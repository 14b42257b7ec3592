// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultExchanges is the enabled-exchange order used when EXCHANGES is unset.
// The order matters: it is the tie-break order for spread evaluation.
var DefaultExchanges = []string{"binance", "bybit", "mexc", "htx", "okx", "bitget"}

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// Exchanges is the ordered list of enabled exchanges.
	Exchanges []string

	// QuoteAsset is the settlement asset pairs must be quoted in (e.g. "USDT").
	QuoteAsset string

	// RefreshInterval is the sleep between aggregation cycles.
	RefreshInterval time.Duration

	// RequestTimeout bounds every outbound exchange request.
	RequestTimeout time.Duration

	// RequestsPerSecond paces outbound quote requests across all adapters.
	RequestsPerSecond float64

	// MaxConcurrentSymbols caps concurrent per-symbol fan-outs.
	MaxConcurrentSymbols int

	// SpreadThreshold is the minimum spread percentage that triggers an alert.
	SpreadThreshold float64

	// AlertMinDelta is the minimum change (in percentage points) from the
	// last notified spread before the same symbol alerts again.
	AlertMinDelta float64

	// TopN is the number of opportunities kept in the published table.
	TopN int

	// SymbolCacheFile is the path of the persisted symbol universe.
	SymbolCacheFile string

	// SymbolCacheTTL is how long a cached symbol universe stays fresh.
	SymbolCacheTTL time.Duration

	// SymbolLimit caps the size of the symbol universe.
	SymbolLimit int

	// Telegram contains the Telegram alert sink settings.
	Telegram TelegramConfig

	// Kafka contains the opportunity feed settings.
	Kafka KafkaConfig

	// DBDSN is the ClickHouse connection string for opportunity history.
	// Empty disables history persistence.
	DBDSN string

	// ServerPort is the HTTP API listen port.
	ServerPort string
}

// TelegramConfig holds Telegram Bot API settings for the alert sink.
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatID   string
}

// KafkaConfig holds Kafka connection settings for the opportunity feed.
type KafkaConfig struct {
	Enabled bool
	Broker  string
	Topic   string
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
// Returns empty when no ClickHouse host is configured.
func getDatabaseDSN() string {
	dbHost := getEnv("CLICKHOUSE_HOST", "")
	if dbHost == "" {
		return ""
	}
	dbUser := getEnv("CLICKHOUSE_USER", "default")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "default")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	exchanges := DefaultExchanges
	if raw := getEnv("EXCHANGES", ""); raw != "" {
		exchanges = nil
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				exchanges = append(exchanges, name)
			}
		}
	}

	return &AppConfig{
		Exchanges:            exchanges,
		QuoteAsset:           strings.ToUpper(getEnv("QUOTE_ASSET", "USDT")),
		RefreshInterval:      getEnvDuration("REFRESH_INTERVAL", 5*time.Second),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		RequestsPerSecond:    getEnvFloat("REQUESTS_PER_SECOND", 20),
		MaxConcurrentSymbols: getEnvInt("MAX_CONCURRENT_SYMBOLS", 8),
		SpreadThreshold:      getEnvFloat("SPREAD_THRESHOLD", 1.0),
		AlertMinDelta:        getEnvFloat("ALERT_MIN_DELTA", 0.1),
		TopN:                 getEnvInt("TOP_N", 20),
		SymbolCacheFile:      getEnv("SYMBOL_CACHE_FILE", "data/symbol_cache.json"),
		SymbolCacheTTL:       getEnvDuration("SYMBOL_CACHE_TTL", 24*time.Hour),
		SymbolLimit:          getEnvInt("SYMBOL_LIMIT", 300),
		Telegram: TelegramConfig{
			Enabled:  getEnvBool("TELEGRAM_ENABLED", false),
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "arbradar_opportunities"),
		},
		DBDSN:      getDatabaseDSN(),
		ServerPort: getEnv("SERVER_PORT", "8080"),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.EqualFold(valueStr, "true") || valueStr == "1"
}

// getEnvDuration returns the environment variable as a duration or a default.
// Plain integers are treated as seconds for compatibility with older deploys.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
