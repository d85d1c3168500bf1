package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL         string `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath     string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsPath  string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
		FromName string `yaml:"from_name" env:"SMTP_FROM_NAME"`
	} `yaml:"smtp"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
		MaxAge         string   `yaml:"max_age" env:"CORS_MAX_AGE"`
	} `yaml:"cors"`

	Notifications struct {
		SimulatorEnabled  bool   `yaml:"simulator_enabled" env:"NOTIFICATIONS_SIMULATOR_ENABLED"`
		SimulatorInterval string `yaml:"simulator_interval" env:"NOTIFICATIONS_SIMULATOR_INTERVAL"`
		Capacity          int    `yaml:"capacity" env:"NOTIFICATIONS_CAPACITY"`
	} `yaml:"notifications"`

	Ledger struct {
		PreparingDelay    string `yaml:"preparing_delay" env:"LEDGER_PREPARING_DELAY"`
		SigningDelay      string `yaml:"signing_delay" env:"LEDGER_SIGNING_DELAY"`
		BroadcastingDelay string `yaml:"broadcasting_delay" env:"LEDGER_BROADCASTING_DELAY"`
		ConfirmingDelay   string `yaml:"confirming_delay" env:"LEDGER_CONFIRMING_DELAY"`
	} `yaml:"ledger"`

	Jobs struct {
		ExpirySweepInterval string `yaml:"expiry_sweep_interval" env:"JOBS_EXPIRY_SWEEP_INTERVAL"`
	} `yaml:"jobs"`

	Interviews struct {
		DailyCapacity   int `yaml:"daily_capacity" env:"INTERVIEWS_DAILY_CAPACITY"`
		DefaultDuration int `yaml:"default_duration_minutes" env:"INTERVIEWS_DEFAULT_DURATION"`
	} `yaml:"interviews"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		SampleData    bool   `yaml:"sample_data" env:"SEED_SAMPLE_DATA"`
	} `yaml:"seed"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.StoragePath = "uploads"
	config.Server.ShutdownTimeout = "10s"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "placementhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsPath = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "placementhub"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// SMTP defaults; an empty host logs emails instead of sending them
	config.SMTP.Port = 587
	config.SMTP.From = "no-reply@placementhub.local"
	config.SMTP.FromName = "Placement Cell"

	config.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	config.CORS.MaxAge = "12h"

	config.Notifications.SimulatorEnabled = true
	config.Notifications.SimulatorInterval = "15s"
	config.Notifications.Capacity = 500

	config.Ledger.PreparingDelay = "800ms"
	config.Ledger.SigningDelay = "1200ms"
	config.Ledger.BroadcastingDelay = "1500ms"
	config.Ledger.ConfirmingDelay = "1s"

	config.Jobs.ExpirySweepInterval = "5m"

	config.Interviews.DailyCapacity = 8
	config.Interviews.DefaultDuration = 45

	config.Seed.AdminEmail = "admin@placementhub.local"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":     config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration":    config.JWT.RefreshTokenExpiration,
		"notification simulator interval": config.Notifications.SimulatorInterval,
		"ledger preparing delay":          config.Ledger.PreparingDelay,
		"ledger signing delay":            config.Ledger.SigningDelay,
		"ledger broadcasting delay":       config.Ledger.BroadcastingDelay,
		"ledger confirming delay":         config.Ledger.ConfirmingDelay,
		"job expiry sweep interval":       config.Jobs.ExpirySweepInterval,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Interviews.DailyCapacity < 1 {
		return fmt.Errorf("interview daily capacity must be at least 1")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production") || strings.EqualFold(c.Server.Mode, "release")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
