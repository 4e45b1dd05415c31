package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Payment  PaymentConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	AdminAPIKeys []string // Valid API keys for the admin console
}

type StoreConfig struct {
	DatabaseURL   string // Hosted database DSN; empty means offline mode
	RedisAddr     string // Redis address for sessions; empty means in-memory
	SessionTTLMin int    // Session lifetime in minutes (redis backend)
	SeedFile      string // Optional YAML fallback dataset; empty uses built-in seed
}

type PaymentConfig struct {
	CaptureDelayMS int // Simulated payment capture latency
	CredentialSize int // Pickup QR size in pixels
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			AdminAPIKeys: getEnvAsSlice("ADMIN_API_KEYS", []string{"canteen-admin"}),
		},
		Store: StoreConfig{
			DatabaseURL:   getEnv("DATABASE_URL", ""),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			SessionTTLMin: getEnvAsInt("SESSION_TTL_MIN", 240),
			SeedFile:      getEnv("SEED_FILE", ""),
		},
		Payment: PaymentConfig{
			CaptureDelayMS: getEnvAsInt("CAPTURE_DELAY_MS", 1500),
			CredentialSize: getEnvAsInt("CREDENTIAL_SIZE", 256),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.AdminAPIKeys) == 0 {
		return fmt.Errorf("at least one admin API key must be configured")
	}

	if c.Payment.CaptureDelayMS < 0 {
		return fmt.Errorf("CAPTURE_DELAY_MS must be non-negative")
	}

	if c.Store.SessionTTLMin <= 0 {
		return fmt.Errorf("SESSION_TTL_MIN must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
