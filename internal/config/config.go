// ABOUTME: Healthlog configuration management with backend selection.
// ABOUTME: Layers the JSON config file, .env, and HEALTHLOG_* environment variables.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/joho/godotenv"
)

// Backend names accepted by OpenStorage.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCSV      = "csv"
	BackendS3       = "s3"
	BackendBadger   = "badger"
)

// DefaultListen is the dashboard address used when none is configured.
const DefaultListen = "127.0.0.1:8501"

// Backends lists every backend name in help order.
var Backends = []string{BackendSQLite, BackendPostgres, BackendCSV, BackendS3, BackendBadger}

// Config stores healthlog configuration.
type Config struct {
	// Backend selects the storage backend. Defaults to "sqlite".
	Backend string `json:"backend,omitempty" env:"HEALTHLOG_BACKEND"`

	// DataDir is the root directory for local backends.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/healthlog.
	DataDir string `json:"data_dir,omitempty" env:"HEALTHLOG_DATA_DIR"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty" env:"HEALTHLOG_POSTGRES_DSN"`

	S3 S3Config `json:"s3,omitempty"`

	// Listen is the dashboard address for `healthlog serve`.
	Listen string `json:"listen,omitempty" env:"HEALTHLOG_LISTEN"`
}

// S3Config holds settings for the s3 backend. Empty credentials fall back to
// the default AWS credential chain.
type S3Config struct {
	Bucket          string `json:"bucket,omitempty" env:"HEALTHLOG_S3_BUCKET"`
	Key             string `json:"key,omitempty" env:"HEALTHLOG_S3_KEY"`
	Region          string `json:"region,omitempty" env:"HEALTHLOG_S3_REGION"`
	Endpoint        string `json:"endpoint,omitempty" env:"HEALTHLOG_S3_ENDPOINT"`
	AccessKeyID     string `json:"access_key_id,omitempty" env:"HEALTHLOG_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key,omitempty" env:"HEALTHLOG_S3_SECRET_ACCESS_KEY"`
	PathStyle       bool   `json:"path_style,omitempty" env:"HEALTHLOG_S3_PATH_STYLE"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetListen returns the dashboard address.
func (c *Config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}
	return c.Listen
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	// Each case returns a concrete store; a failed open must not leak a typed nil.
	var (
		repo storage.Repository
		err  error
	)
	switch backend {
	case BackendSQLite:
		var db *storage.DB
		if db, err = storage.Open(filepath.Join(dataDir, "healthlog.db")); err == nil {
			repo = db
		}
	case BackendPostgres:
		var db *storage.DB
		if db, err = storage.OpenPostgres(ctx, c.PostgresDSN); err == nil {
			repo = db
		}
	case BackendCSV:
		var s *storage.CSVStore
		if s, err = storage.NewCSVStore(filepath.Join(dataDir, storage.CSVFileName)); err == nil {
			repo = s
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 backend: bucket required (set HEALTHLOG_S3_BUCKET)")
		}
		var s *storage.S3Store
		if s, err = storage.OpenS3(ctx, storage.S3Options{
			Bucket:          c.S3.Bucket,
			Key:             c.S3.Key,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			PathStyle:       c.S3.PathStyle,
		}); err == nil {
			repo = s
		}
	case BackendBadger:
		var s *storage.BadgerStore
		if s, err = storage.OpenBadger(filepath.Join(dataDir, "badger")); err == nil {
			repo = s
		}
	default:
		return nil, fmt.Errorf("%w: %q (use one of %s)", storage.ErrUnknownBackend, backend, strings.Join(Backends, ", "))
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthlog", "config.json")
}

// Load reads config from disk, then applies a .env file from the working
// directory (if any) and HEALTHLOG_* environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
