// Package config loads the environment-variable-driven configuration
// described in spec.md §6.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseType enumerates the supported relational backends.
type DatabaseType string

const (
	DatabasePostgres DatabaseType = "postgres"
	DatabaseMySQL    DatabaseType = "mysql"
	DatabaseSQLite   DatabaseType = "sqlite"
)

// StoreConfig holds the relational-store connection settings.
type StoreConfig struct {
	Type               DatabaseType
	PostgresURL        string
	MySQLURL           string
	SQLitePath         string
}

// CacheConfig holds the optional Redis cache settings.
type CacheConfig struct {
	URL               string
	TTL               time.Duration
	ReadyRequireCache bool
}

// Enabled reports whether a cache backend was configured.
func (c CacheConfig) Enabled() bool { return c.URL != "" }

// CrawlerConfig holds the crawler/scheduler settings.
type CrawlerConfig struct {
	ZipCodeURL string
	Interval   time.Duration
	RunOnce    bool
	TempDir    string
}

// Config is the top-level application configuration.
type Config struct {
	Store    StoreConfig
	Cache    CacheConfig
	Crawler  CrawlerConfig
}

const (
	defaultCacheTTLSeconds     = 300
	defaultCrawlerIntervalSecs = 86400
	defaultTempDir             = "./tmp/postal-converter-ja"
)

// LoadFromEnv loads configuration from the environment, first loading a
// `.env` file if present (no error if missing), matching the crawler and
// API binaries' `dotenv::dotenv().ok()` behavior in the original source.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store: StoreConfig{
			Type:        DatabaseType(envOr("DATABASE_TYPE", string(DatabasePostgres))),
			PostgresURL: os.Getenv("POSTGRES_DATABASE_URL"),
			MySQLURL:    os.Getenv("MYSQL_DATABASE_URL"),
			SQLitePath:  envOr("SQLITE_DATABASE_PATH", "storage/sqlite/postal_codes.sqlite3"),
		},
		Cache: CacheConfig{
			URL:               os.Getenv("REDIS_URL"),
			TTL:               time.Duration(envInt("REDIS_CACHE_TTL_SECONDS", defaultCacheTTLSeconds)) * time.Second,
			ReadyRequireCache: IsTruthy(envOr("READY_REQUIRE_CACHE", "false")),
		},
		Crawler: CrawlerConfig{
			ZipCodeURL: os.Getenv("ZIP_CODE_URL"),
			Interval:   time.Duration(envInt("CRAWLER_INTERVAL_SECONDS", defaultCrawlerIntervalSecs)) * time.Second,
			RunOnce:    IsTruthy(envOr("CRAWLER_RUN_ONCE", "false")),
			TempDir:    envOr("CRAWLER_TEMP_DIR", defaultTempDir),
		},
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// IsTruthy parses the boolean-flag convention used across the environment
// variables in spec.md §6 and §8: case-insensitive, trimmed, accepting
// "1"/"true"/"yes"/"on".
func IsTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
