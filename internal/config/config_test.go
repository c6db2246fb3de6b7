package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DATABASE_TYPE", "POSTGRES_DATABASE_URL", "MYSQL_DATABASE_URL", "SQLITE_DATABASE_PATH",
		"REDIS_URL", "REDIS_CACHE_TTL_SECONDS", "READY_REQUIRE_CACHE",
		"ZIP_CODE_URL", "CRAWLER_INTERVAL_SECONDS", "CRAWLER_RUN_ONCE", "CRAWLER_TEMP_DIR",
	}
	for _, k := range keys {
		original, had := os.LookupEnv(k)
		os.Unsetenv(k)
		k, original, had := k, original, had
		t.Cleanup(func() {
			if had {
				os.Setenv(k, original)
			}
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DatabasePostgres, cfg.Store.Type)
	assert.Equal(t, 300*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.ReadyRequireCache)
	assert.Equal(t, 86400*time.Second, cfg.Crawler.Interval)
	assert.False(t, cfg.Crawler.RunOnce)
	assert.False(t, cfg.Cache.Enabled())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("DATABASE_TYPE", "mysql")
	os.Setenv("MYSQL_DATABASE_URL", "mysql://example")
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	os.Setenv("REDIS_CACHE_TTL_SECONDS", "60")
	os.Setenv("READY_REQUIRE_CACHE", "true")
	os.Setenv("CRAWLER_RUN_ONCE", "yes")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DatabaseMySQL, cfg.Store.Type)
	assert.Equal(t, "mysql://example", cfg.Store.MySQLURL)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.ReadyRequireCache)
	assert.True(t, cfg.Crawler.RunOnce)
}

func TestTruthyParser(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "On"} {
		assert.Truef(t, IsTruthy(v), "expected %q to be treated as true", v)
	}
	for _, v := range []string{"0", "false", "", "disabled", "no"} {
		assert.Falsef(t, IsTruthy(v), "expected %q to be treated as false", v)
	}
}
