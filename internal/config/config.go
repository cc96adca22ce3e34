package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultCategories are seeded into every new profile.
var DefaultCategories = []string{"Groceries", "Entertainment", "Bills", "Savings", "Health", "Travel"}

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	BcryptCost    int
	AuthRateLimit int // requests per minute per client on auth routes; 0 means 20

	// Ledger
	TimeZone             string
	PageSize             int
	MaxPageSize          int
	PredefinedCategories []string

	// Authenticated user lookups, disabled when UserCacheSize is 0
	UserCacheSize int
	UserCacheTTL  time.Duration

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		DataBackend: getEnv("DATA_BACKEND", "sqlite"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/home_budget.db"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 5*time.Minute),
		JWTRefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 24*time.Hour),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),

		TimeZone:             getEnv("TIME_ZONE", "UTC"),
		PageSize:             getEnvInt("PAGE_SIZE", 10),
		MaxPageSize:          getEnvInt("MAX_PAGE_SIZE", 100),
		PredefinedCategories: getEnvList("PREDEFINED_CATEGORIES", DefaultCategories),

		UserCacheSize: getEnvInt("USER_CACHE_SIZE", 1000),
		UserCacheTTL:  getEnvDuration("USER_CACHE_TTL", time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "home_budget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters (set JWT_SECRET)")
	}
	if c.JWTAccessTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid access token ttl %v: must be at least 1 second", c.JWTAccessTTL))
	}
	if c.JWTRefreshTTL < c.JWTAccessTTL {
		errors = append(errors, fmt.Sprintf("invalid refresh token ttl %v: must not be shorter than the access token ttl", c.JWTRefreshTTL))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.BcryptCost))
	}
	if c.AuthRateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid auth rate limit %d: must not be negative", c.AuthRateLimit))
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.TimeZone, err))
	}
	if c.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	}
	if c.MaxPageSize < c.PageSize {
		errors = append(errors, fmt.Sprintf("invalid max page size %d: must be at least the page size %d", c.MaxPageSize, c.PageSize))
	}
	for _, name := range c.PredefinedCategories {
		if len(name) > 255 {
			errors = append(errors, fmt.Sprintf("predefined category '%.20s...' is longer than 255 characters", name))
		}
	}

	if c.UserCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid user cache size %d: must not be negative", c.UserCacheSize))
	}
	if c.UserCacheSize > 0 && c.UserCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid user cache ttl %v: must be positive", c.UserCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the configured time zone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", s)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, trimming blanks and dropping
// duplicates while keeping the first occurrence order.
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), defaultValue...)
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
