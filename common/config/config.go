package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Server    ServerConfig
	Storage   StorageConfig
	App       AppConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// ServerConfig holds HTTP server timeouts
// Read/write timeouts default high because mixes are large and clients
// are often on slow links
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig holds upload directory settings
type StorageConfig struct {
	// Flat directory holding every stored blob plus the per-user
	// registry documents
	UploadDir string

	// Request body cap for uploads, in echo body-limit notation ("200M")
	MaxUploadSize string

	// Listing page size when the client does not pass one
	ListLimitDefault int
}

// AppConfig holds presentation defaults
type AppConfig struct {
	// Shown in page titles and the web manifest
	Name string

	// Scope applied to uploads that omit user or project
	DefaultUserID    string
	DefaultProjectID string

	// Scope pinned by the installable app shell
	AppUserID    string
	AppProjectID string
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8000),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"), // Default to text for development
		},
		Server: ServerConfig{
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Minute),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Minute),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			UploadDir:        getEnv("UPLOAD_DIR", "cloud_uploads"),
			MaxUploadSize:    getEnv("MAX_UPLOAD_SIZE", "200M"),
			ListLimitDefault: getEnvInt("LIST_LIMIT_DEFAULT", 25),
		},
		App: AppConfig{
			Name:             getEnv("APP_NAME", "MixRefresh"),
			DefaultUserID:    getEnv("DEFAULT_USER_ID", "default_user"),
			DefaultProjectID: getEnv("DEFAULT_PROJECT_ID", "default_project"),
			AppUserID:        getEnv("APP_USER_ID", "justin"),
			AppProjectID:     getEnv("APP_PROJECT_ID", "default"),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", false),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload dir is required")
	}

	if c.Storage.ListLimitDefault < 1 || c.Storage.ListLimitDefault > 200 {
		return fmt.Errorf("list limit default must be within [1, 200], got %d", c.Storage.ListLimitDefault)
	}

	if c.App.DefaultUserID == "" || c.App.DefaultProjectID == "" {
		return fmt.Errorf("default user and project ids are required")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
