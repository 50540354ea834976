// Package config loads the server configuration from the environment.
//
// Values are read once at startup. A .env file in the working directory is
// loaded first if present, so local development does not need exported
// variables; real environment variables always win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakif/ide-server/internal/logging"
)

const (
	DefaultPort           = 3000
	DefaultDatabaseURL    = "sqlite://ide_server.db"
	DefaultLogLevel       = "info"
	DefaultUploadDir      = "./uploads"
	DefaultMimeType       = "application/octet-stream"
	DefaultMaxUploadBytes = 32 << 20 // 32 MiB
)

type Config struct {
	Port int

	// DatabaseURL is where the SQLite database lives. The "sqlite://" scheme
	// prefix is optional; ":memory:" gives a throwaway database.
	DatabaseURL string

	LogLevel string

	// UploadDir holds one blob per stored file, named by the file's ID.
	UploadDir string

	// DefaultMimeType is recorded for every upload. The client's
	// Content-Type is never trusted and the payload is never sniffed.
	DefaultMimeType string

	MaxUploadBytes int64
}

// Load reads an optional .env file and then the process environment.
// The returned config has already been validated.
func Load() (*Config, error) {
	// A missing .env is the normal case in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	port, err := getEnvAsInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvAsInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            port,
		DatabaseURL:     getEnv("DATABASE_URL", DefaultDatabaseURL),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		UploadDir:       getEnv("UPLOAD_DIR", DefaultUploadDir),
		DefaultMimeType: getEnv("DEFAULT_MIME_TYPE", DefaultMimeType),
		MaxUploadBytes:  int64(maxUpload),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath() == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return fmt.Errorf("config: UPLOAD_DIR is required")
	}
	if strings.TrimSpace(c.DefaultMimeType) == "" {
		return fmt.Errorf("config: DEFAULT_MIME_TYPE is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return nil
}

// DatabasePath returns DatabaseURL without its optional sqlite:// scheme.
func (c *Config) DatabasePath() string {
	return strings.TrimPrefix(strings.TrimSpace(c.DatabaseURL), "sqlite://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, valueStr, err)
	}
	return value, nil
}
