package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Backend     BackendConfig
	Geocoder    GeocoderConfig
	Notify      NotifyConfig
	User        UserConfig
	Log         LogConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	File  string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// BackendConfig holds configuration for the remote content service
type BackendConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// GeocoderConfig holds reverse-geocoding configuration
type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NotifyConfig holds notification dispatch configuration
type NotifyConfig struct {
	TickInterval time.Duration
	Subject      string
}

// UserConfig identifies the gateway's authenticated user
type UserConfig struct {
	ID string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "waypost"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:9000"),
			AuthToken: getEnv("BACKEND_AUTH_TOKEN", ""),
			Timeout:   getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("GEOCODER_USER_AGENT", "waypost/1.0"),
			Timeout:   getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),
		},
		Notify: NotifyConfig{
			TickInterval: getEnvAsDuration("NOTIFY_TICK_INTERVAL", 30*time.Second),
			Subject:      getEnv("NOTIFY_SUBJECT", "notifications.local_updates"),
		},
		User: UserConfig{
			ID: getEnv("USER_ID", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.User.ID == "" {
		return fmt.Errorf("USER_ID must be set")
	}
	if config.Notify.TickInterval <= 0 {
		return fmt.Errorf("notify tick interval must be positive")
	}

	return nil
}

// ConnString builds a pgx connection string.
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
