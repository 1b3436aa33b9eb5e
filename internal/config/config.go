package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	API      APIConfig
	JWT      JWTConfig
	Lockout  LockoutConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// APIConfig holds API server configuration
type APIConfig struct {
	Port int
}

// JWTConfig holds token signing configuration.
// Rotating the secret invalidates all previously issued tokens.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// LockoutConfig holds login throttling configuration.
// An empty RedisURL disables login throttling.
type LockoutConfig struct {
	RedisURL    string
	MaxAttempts int64
	Window      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	maxAttempts, err := strconv.ParseInt(getEnv("LOCKOUT_MAX_ATTEMPTS", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCKOUT_MAX_ATTEMPTS: %w", err)
	}

	lockoutWindow, err := time.ParseDuration(getEnv("LOCKOUT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCKOUT_WINDOW: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "customer_directory"),
			Password: getEnv("DB_PASSWORD", "customer_directory"),
			DBName:   getEnv("DB_NAME", "customer_directory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		API: APIConfig{
			Port: apiPort,
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
			Issuer: getEnv("JWT_ISSUER", "customer-directory-api"),
			TTL:    jwtTTL,
		},
		Lockout: LockoutConfig{
			RedisURL:    os.Getenv("REDIS_URL"),
			MaxAttempts: maxAttempts,
			Window:      lockoutWindow,
		},
	}, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
