package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, SourceMongo, cfg.CatalogSource)
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, "routes", cfg.MongoRoutesCollection)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_SOURCE", "FILE")
	t.Setenv("CATALOG_FILE", "catalog.yml")
	t.Setenv("CATALOG_TTL", "90s")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,127.0.0.1 ")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, SourceFile, cfg.CatalogSource)
	assert.Equal(t, "catalog.yml", cfg.CatalogFile)
	assert.Equal(t, 90*time.Second, cfg.CatalogTTL)
	assert.Equal(t, []string{"10.0.0.1", "127.0.0.1"}, cfg.RateLimitWhitelist)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown source", env: map[string]string{"CATALOG_SOURCE": "ftp"}},
		{name: "file source without path", env: map[string]string{"CATALOG_SOURCE": "file"}},
		{name: "http source without url", env: map[string]string{"CATALOG_SOURCE": "http"}},
		{name: "http source with bad url", env: map[string]string{"CATALOG_SOURCE": "http", "CATALOG_URL": "not a url"}},
		{name: "negative redis db", env: map[string]string{"REDIS_DB": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
