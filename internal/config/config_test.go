package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WHEELHOUSE_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8011, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotCacheTTL)
	assert.Empty(t, cfg.AlphaVantageAPIKey)
	require.NotNil(t, cfg.Backup)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WHEELHOUSE_DATA_DIR", t.TempDir())
	t.Setenv("WHEELHOUSE_HOST", "127.0.0.1")
	t.Setenv("WHEELHOUSE_PORT", "9005")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SNAPSHOT_CACHE_TTL_SECONDS", "60")
	t.Setenv("ALPHAVANTAGE_API_KEY", "demo")
	t.Setenv("BACKUP_S3_BUCKET", "wheelhouse-backups")
	t.Setenv("BACKUP_INTERVAL_HOURS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9005, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, time.Minute, cfg.SnapshotCacheTTL)
	assert.Equal(t, "demo", cfg.AlphaVantageAPIKey)
	assert.True(t, cfg.Backup.Enabled, "setting a bucket enables backups")
	assert.Equal(t, "wheelhouse-backups", cfg.Backup.S3Bucket)
	assert.Equal(t, 6*time.Hour, cfg.Backup.Interval)
}

func TestLoadCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("WHEELHOUSE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.LedgerDBPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CacheDBPath())
}

func TestLoadInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("WHEELHOUSE_DATA_DIR", t.TempDir())
	t.Setenv("WHEELHOUSE_PORT", "not-a-number")
	t.Setenv("LOG_PRETTY", "yep")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8011, cfg.Port)
	assert.False(t, cfg.LogPretty)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		shouldError bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "port too low",
			mutate:      func(c *Config) { c.Port = 0 },
			shouldError: true,
		},
		{
			name:        "port too high",
			mutate:      func(c *Config) { c.Port = 70000 },
			shouldError: true,
		},
		{
			name:        "zero cache TTL",
			mutate:      func(c *Config) { c.SnapshotCacheTTL = 0 },
			shouldError: true,
		},
		{
			name: "backup enabled without bucket",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.S3Bucket = ""
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:             8011,
				SnapshotCacheTTL: 5 * time.Minute,
				Backup:           &BackupConfig{},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
