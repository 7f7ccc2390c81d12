package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Security SecurityConfig
	Metrics  MetricsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD"`
	Database        string        `envconfig:"DB_NAME" default:"fruitstore"`
	MaxConnections  int           `envconfig:"DB_MAX_CONNECTIONS" default:"25"`
	MinConnections  int           `envconfig:"DB_MIN_CONNECTIONS" default:"5"`
	MaxConnLifetime int           `envconfig:"DB_MAX_CONN_LIFETIME" default:"300"` // seconds
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	TxMaxRetries    int           `envconfig:"DB_TX_MAX_RETRIES" default:"3"`
	TxRetryBackoff  time.Duration `envconfig:"DB_TX_RETRY_BACKOFF" default:"20ms"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string `envconfig:"API_KEY"`
}

// StorageConfig holds blob storage configuration for payment proofs and fruit images.
// Uploads go to S3 when enabled and fall back to the local directory otherwise.
type StorageConfig struct {
	S3Enabled      bool   `envconfig:"S3_ENABLED" default:"false"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix       string `envconfig:"S3_PREFIX" default:"uploads/"`
	S3PublicURL    string `envconfig:"S3_PUBLIC_URL"`
	LocalDir       string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	LocalBaseURL   string `envconfig:"UPLOAD_BASE_URL" default:"/uploads"`
	MaxUploadBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
}

// SecurityConfig holds credential hashing configuration.
type SecurityConfig struct {
	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MigrateConfig is the subset of configuration the migration tool needs.
type MigrateConfig struct {
	Database DatabaseConfig
	Logger   LoggerConfig
}

// LoadMigrate loads database and logger settings only, so schema changes do not need an API key.
func LoadMigrate() (*MigrateConfig, error) {
	var cfg MigrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Logger.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if c.Storage.S3Enabled {
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Storage.LocalDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	if c.Storage.MaxUploadBytes < 1 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	// bcrypt accepts costs 4..31
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("invalid bcrypt cost: %d (must be between 4 and 31)", c.Security.BcryptCost)
	}

	return nil
}

// Validate validates the database settings.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.TxMaxRetries < 0 {
		return fmt.Errorf("transaction max retries cannot be negative")
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate validates the logger settings.
func (c *LoggerConfig) Validate() error {
	if !validLogLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
