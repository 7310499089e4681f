// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/charity-cms/internal/storage"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// DefaultAdminPassword is the demo credential. It is refused in production.
const DefaultAdminPassword = "admin123"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"CHARITY_ENV" envDefault:"development"`
	ServerHost    string `env:"CHARITY_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CHARITY_SERVER_PORT" envDefault:"8080"`
	LogLevel      string `env:"CHARITY_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"CHARITY_LOG_FORMAT" envDefault:"text"` // text or json
	SessionSecret string `env:"CHARITY_SESSION_SECRET"`

	// Storage configuration
	StorageDriver string `env:"CHARITY_STORAGE_DRIVER" envDefault:"file"`
	StoragePath   string `env:"CHARITY_STORAGE_PATH" envDefault:"./data"`
	StorageDSN    string `env:"CHARITY_STORAGE_DSN"`
	StorageKey    string `env:"CHARITY_STORAGE_KEY" envDefault:"jati_foundation_db"`
	RedisURL      string `env:"CHARITY_REDIS_URL"`
	RedisPrefix   string `env:"CHARITY_REDIS_PREFIX" envDefault:"charity:"`
	WatchFile     bool   `env:"CHARITY_WATCH_FILE" envDefault:"true"` // Report hand edits of the file backend
	SeedFile      string `env:"CHARITY_SEED_FILE"`                    // Optional YAML seed document

	// S3 configuration
	S3Bucket          string `env:"CHARITY_S3_BUCKET"`
	S3Region          string `env:"CHARITY_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"CHARITY_S3_ENDPOINT"`
	S3PathStyle       bool   `env:"CHARITY_S3_PATH_STYLE" envDefault:"false"`
	S3Prefix          string `env:"CHARITY_S3_PREFIX" envDefault:"charity/"`
	S3AccessKeyID     string `env:"CHARITY_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"CHARITY_S3_SECRET_ACCESS_KEY"`

	// Admin credentials
	AdminUser         string `env:"CHARITY_ADMIN_USER" envDefault:"admin"`
	AdminPassword     string `env:"CHARITY_ADMIN_PASSWORD" envDefault:"admin123"`
	AdminPasswordHash string `env:"CHARITY_ADMIN_PASSWORD_HASH"` // argon2id, overrides AdminPassword

	// Content generation
	AIProvider      string `env:"CHARITY_AI_PROVIDER" envDefault:"none"` // none, openai, gemini, claude
	AIAPIKey        string `env:"CHARITY_AI_API_KEY"`
	AITextModel     string `env:"CHARITY_AI_TEXT_MODEL"`
	AIImageModel    string `env:"CHARITY_AI_IMAGE_MODEL"`
	AIBaseURL       string `env:"CHARITY_AI_BASE_URL"`
	AIRatePerMinute int    `env:"CHARITY_AI_RATE_PER_MINUTE" envDefault:"10"`

	// Backups
	BackupSchedule string `env:"CHARITY_BACKUP_SCHEDULE" envDefault:"0 3 * * *"` // cron spec, "off" disables
	BackupKeep     int    `env:"CHARITY_BACKUP_KEEP" envDefault:"7"`
}

// AI providers accepted in CHARITY_AI_PROVIDER.
var AIProviders = []string{"none", "openai", "gemini", "claude"}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// BackupsEnabled returns true if scheduled backups are configured.
func (c Config) BackupsEnabled() bool {
	switch strings.TrimSpace(c.BackupSchedule) {
	case "", "off", "none":
		return false
	}
	return true
}

// AIEnabled returns true if a content generation provider is configured.
func (c Config) AIEnabled() bool {
	return c.AIProvider != "" && c.AIProvider != "none"
}

// Storage returns the backend configuration.
func (c Config) Storage(logger *slog.Logger) storage.Config {
	return storage.Config{
		Driver:      c.StorageDriver,
		Path:        c.StoragePath,
		DSN:         c.StorageDSN,
		RedisURL:    c.RedisURL,
		RedisPrefix: c.RedisPrefix,
		S3: storage.S3Options{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			PathStyle:       c.S3PathStyle,
			Prefix:          c.S3Prefix,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
		},
		Logger: logger,
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The CSRF middleware requires a 32 byte key.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CHARITY_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// LoadStorage parses the environment for the offline tools. Only the storage
// settings are validated.
func LoadStorage() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CHARITY_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	if slices.Contains(knownWeakSecrets, c.SessionSecret) {
		return errors.New("CHARITY_SESSION_SECRET is a known default value and must not be used; " +
			"generate a secure secret with: openssl rand -base64 32")
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if !slices.Contains(AIProviders, c.AIProvider) {
		return fmt.Errorf("CHARITY_AI_PROVIDER %q is not one of %s",
			c.AIProvider, strings.Join(AIProviders, ", "))
	}
	if c.AIEnabled() && c.AIAPIKey == "" {
		return fmt.Errorf("CHARITY_AI_API_KEY is required for the %s provider", c.AIProvider)
	}

	if c.AdminUser == "" {
		return errors.New("CHARITY_ADMIN_USER must not be empty")
	}
	if !c.IsDevelopment() && c.AdminPasswordHash == "" && c.AdminPassword == DefaultAdminPassword {
		return errors.New("the default admin password is not allowed outside development; " +
			"set CHARITY_ADMIN_PASSWORD_HASH (charityctl hash-password) or CHARITY_ADMIN_PASSWORD")
	}

	if c.BackupKeep < 1 {
		return fmt.Errorf("CHARITY_BACKUP_KEEP must be at least 1, got %d", c.BackupKeep)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !slices.Contains(storage.Drivers, c.StorageDriver) {
		return fmt.Errorf("CHARITY_STORAGE_DRIVER %q is not one of %s",
			c.StorageDriver, strings.Join(storage.Drivers, ", "))
	}

	switch c.StorageDriver {
	case storage.DriverMySQL, storage.DriverPostgres:
		if c.StorageDSN == "" {
			return fmt.Errorf("CHARITY_STORAGE_DSN is required for the %s driver", c.StorageDriver)
		}
	case storage.DriverRedis:
		if c.RedisURL == "" {
			return errors.New("CHARITY_REDIS_URL is required for the redis driver")
		}
	case storage.DriverS3:
		if c.S3Bucket == "" {
			return errors.New("CHARITY_S3_BUCKET is required for the s3 driver")
		}
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
