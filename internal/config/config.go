// Package config provides configuration loading and validation for the findr backend.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the main server configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the share-link cache settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds the resume bucket settings.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	UploadTimeout int    `mapstructure:"upload_timeout_seconds"`
}

// AnalyzerConfig holds settings for the external resume analyzer.
type AnalyzerConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	RequestTimeout  int    `mapstructure:"request_timeout_seconds"`
	PollInterval    int    `mapstructure:"poll_interval_seconds"`
	MaxPollAttempts int    `mapstructure:"max_poll_attempts"`
	MaxConcurrent   int    `mapstructure:"max_concurrent"`
}

// LoggingConfig holds zap logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OAuthConfig holds Google sign-in settings. Google sign-in is disabled when
// the client ID is empty.
type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url"`
	FrontendURL        string `mapstructure:"frontend_url"`
}

// AdminConfig holds settings for administrative endpoints.
type AdminConfig struct {
	MigrateToken  string `mapstructure:"migrate_token"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// UploadTimeoutDuration returns the resume upload timeout.
func (s StorageConfig) UploadTimeoutDuration() time.Duration {
	return time.Duration(s.UploadTimeout) * time.Second
}

// RequestTimeoutDuration returns the analyzer HTTP request timeout.
func (a AnalyzerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(a.RequestTimeout) * time.Second
}

// PollIntervalDuration returns the delay between analyzer status polls.
func (a AnalyzerConfig) PollIntervalDuration() time.Duration {
	return time.Duration(a.PollInterval) * time.Second
}

// Load reads configuration from config.yaml (if present) with environment
// variable overrides, e.g. DATABASE_URL overrides database.url.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "findr")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.upload_timeout_seconds", 15)
	v.SetDefault("analyzer.request_timeout_seconds", 30)
	v.SetDefault("analyzer.poll_interval_seconds", 5)
	v.SetDefault("analyzer.max_poll_attempts", 60)
	v.SetDefault("analyzer.max_concurrent", 4)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("admin.migrations_dir", "migrations")

	// Common env var spellings that don't follow the dotted keys.
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("analyzer.base_url", "ANALYZER_BASE_URL")
	_ = v.BindEnv("storage.bucket", "RESUME_BUCKET")
	_ = v.BindEnv("storage.public_base_url", "RESUME_PUBLIC_BASE_URL")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = v.BindEnv("admin.migrate_token", "MIGRATE_TOKEN")
	_ = v.BindEnv("oauth.google_client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("oauth.google_client_secret", "GOOGLE_CLIENT_SECRET")
	_ = v.BindEnv("oauth.redirect_url", "OAUTH_REDIRECT_URL")
	_ = v.BindEnv("oauth.frontend_url", "FRONTEND_URL")
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (set DATABASE_URL)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Analyzer.PollInterval <= 0 {
		return fmt.Errorf("analyzer.poll_interval_seconds must be positive")
	}
	if c.Analyzer.MaxPollAttempts <= 0 {
		return fmt.Errorf("analyzer.max_poll_attempts must be positive")
	}
	return nil
}
