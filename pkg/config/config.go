package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	ExchangeRate ExchangeRateConfig
	Ledger       LedgerConfig
	Sentry       SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int    // seconds; 0 disables the per-request deadline
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// ExchangeRateConfig configures the rate source and the in-process rate cache
type ExchangeRateConfig struct {
	Source          string // "http" or "static"
	BaseURL         string
	APIKey          string
	BaseCurrency    string
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	RetryAttempts   int
	BreakerFailures int
	BreakerTimeout  int // seconds the breaker stays open
	StaticRates     string
	RedisKeyPrefix  string
}

// LedgerConfig holds collection box policy switches
type LedgerConfig struct {
	AllowForceUnregister bool
	KeepUnconvertible    bool
	CurrencyPolicy       string // "live" or "static"
	AllowedCurrencies    []string
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", 15),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fundraising"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		ExchangeRate: ExchangeRateConfig{
			Source:          getEnv("EXCHANGE_RATE_SOURCE", "http"),
			BaseURL:         getEnv("EXCHANGE_RATE_API_URL", "https://v6.exchangerate-api.com/v6"),
			APIKey:          getEnv("EXCHANGE_RATE_API_KEY", ""),
			BaseCurrency:    strings.ToUpper(getEnv("EXCHANGE_RATE_BASE_CURRENCY", "EUR")),
			RefreshInterval: getEnvAsDuration("EXCHANGE_RATE_REFRESH_INTERVAL", time.Hour),
			FetchTimeout:    getEnvAsDuration("EXCHANGE_RATE_FETCH_TIMEOUT", 5*time.Second),
			RetryAttempts:   getEnvAsInt("EXCHANGE_RATE_RETRY_ATTEMPTS", 3),
			BreakerFailures: getEnvAsInt("EXCHANGE_RATE_BREAKER_FAILURES", 5),
			BreakerTimeout:  getEnvAsInt("EXCHANGE_RATE_BREAKER_TIMEOUT", 30),
			StaticRates:     getEnv("EXCHANGE_RATE_STATIC_RATES", "EUR=1,USD=1.087,PLN=4.3478,GBP=0.8547"),
			RedisKeyPrefix:  getEnv("EXCHANGE_RATE_REDIS_PREFIX", "exchange_rates"),
		},
		Ledger: LedgerConfig{
			AllowForceUnregister: getEnvAsBool("LEDGER_ALLOW_FORCE_UNREGISTER", true),
			KeepUnconvertible:    getEnvAsBool("LEDGER_KEEP_UNCONVERTIBLE", false),
			CurrencyPolicy:       getEnv("LEDGER_CURRENCY_POLICY", "live"),
			AllowedCurrencies:    getEnvAsList("LEDGER_ALLOWED_CURRENCIES", []string{"EUR", "USD", "PLN", "GBP"}),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.ExchangeRate.Source {
	case "http", "static":
	default:
		return fmt.Errorf("unsupported EXCHANGE_RATE_SOURCE %q", c.ExchangeRate.Source)
	}
	switch c.Ledger.CurrencyPolicy {
	case "live", "static":
	default:
		return fmt.Errorf("unsupported LEDGER_CURRENCY_POLICY %q", c.Ledger.CurrencyPolicy)
	}
	if c.ExchangeRate.RefreshInterval <= 0 {
		return fmt.Errorf("EXCHANGE_RATE_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects it
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ParseRates parses "EUR=1,USD=1.08" into a code to rate string map
func ParseRates(raw string) (map[string]string, error) {
	rates := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed rate %q", pair)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = strings.TrimSpace(value)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no rates configured")
	}
	return rates, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
