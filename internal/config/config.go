package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the blob store backend holding the application
// document.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`   // sqlite | postgres | http
	BlobName string         `yaml:"blob_name"` // defaults to trainer-data.json
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	HTTP     HTTPBlobConfig `yaml:"http"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type HTTPBlobConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// CatalogConfig optionally overrides the built-in training catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_STORAGE_BACKEND, LIFTLOG_STORAGE_BLOB_NAME,
//	LIFTLOG_SQLITE_PATH,
//	LIFTLOG_PG_HOST, LIFTLOG_PG_PORT, LIFTLOG_PG_NAME,
//	LIFTLOG_PG_USER, LIFTLOG_PG_PASSWORD, LIFTLOG_PG_SSLMODE,
//	LIFTLOG_BLOB_BASE_URL, LIFTLOG_BLOB_TOKEN,
//	LIFTLOG_CATALOG_PATH, LIFTLOG_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendSQLite
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "liftlog.db"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("LIFTLOG_STORAGE_BLOB_NAME"); v != "" {
		cfg.Storage.BlobName = v
	}
	if v := os.Getenv("LIFTLOG_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("LIFTLOG_PG_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("LIFTLOG_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_PG_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("LIFTLOG_PG_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("LIFTLOG_PG_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("LIFTLOG_PG_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_BLOB_BASE_URL"); v != "" {
		cfg.Storage.HTTP.BaseURL = v
	}
	if v := os.Getenv("LIFTLOG_BLOB_TOKEN"); v != "" {
		cfg.Storage.HTTP.Token = v
	}
	if v := os.Getenv("LIFTLOG_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case BackendPostgres:
		if c.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if c.Storage.Postgres.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if c.Storage.Postgres.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if c.Storage.Postgres.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	case BackendHTTP:
		if c.Storage.HTTP.BaseURL == "" {
			return fmt.Errorf("storage.http.base_url is required")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: sqlite, postgres, http")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
