// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for ledger.db and cache.db (always absolute)
	Host               string
	Port               int
	LogLevel           string
	LogPretty          bool
	DevMode            bool
	SnapshotCacheTTL   time.Duration // TTL for cached ledger snapshots
	AlphaVantageAPIKey string        // Optional, enables ticker quote lookups
	Backup             *BackupConfig
}

// BackupConfig holds database backup automation configuration
type BackupConfig struct {
	Enabled  bool
	S3Bucket string
	S3Prefix string
	Region   string
	Interval time.Duration // Time between scheduled backup runs
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check WHEELHOUSE_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("WHEELHOUSE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Host:               getEnv("WHEELHOUSE_HOST", "0.0.0.0"),
		Port:               getEnvAsInt("WHEELHOUSE_PORT", 8011),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvAsBool("LOG_PRETTY", false),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		SnapshotCacheTTL:   time.Duration(getEnvAsInt("SNAPSHOT_CACHE_TTL_SECONDS", 300)) * time.Second,
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		Backup:             loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SnapshotCacheTTL <= 0 {
		return fmt.Errorf("snapshot cache TTL must be positive, got %s", c.SnapshotCacheTTL)
	}
	if c.Backup != nil && c.Backup.Enabled && c.Backup.S3Bucket == "" {
		return fmt.Errorf("backup enabled but BACKUP_S3_BUCKET is not set")
	}
	return nil
}

// LedgerDBPath returns the path of the primary ledger database.
func (c *Config) LedgerDBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// CacheDBPath returns the path of the disposable cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// loadBackupConfig loads backup configuration. Disabled unless a bucket is set
// or BACKUP_ENABLED is explicitly true.
func loadBackupConfig() *BackupConfig {
	bucket := getEnv("BACKUP_S3_BUCKET", "")
	return &BackupConfig{
		Enabled:  getEnvAsBool("BACKUP_ENABLED", bucket != ""),
		S3Bucket: bucket,
		S3Prefix: getEnv("BACKUP_S3_PREFIX", "wheelhouse"),
		Region:   getEnv("AWS_REGION", "us-east-1"),
		Interval: time.Duration(getEnvAsInt("BACKUP_INTERVAL_HOURS", 24)) * time.Hour,
	}
}
