package config

import (
	"fmt"
	"os"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL      string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string

	// Redis
	RedisURL      string
	RedisPassword string

	// Server
	Port string

	// Authentication
	JWTSecret string

	// Casino
	WelcomeCredit int64 // sats granted to a freshly registered player
}

func Load() *Config {
	return &Config{
		// Environment
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Database
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "satoshi_casino"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "casino_user"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "casino_password"),
		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),

		// Redis
		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Server
		Port: getEnvOrDefault("PORT", "8080"),

		// Authentication
		JWTSecret: getEnvOrDefault("JWT_SECRET", "satoshi-casino-secret-key-change-in-production"),

		// Casino
		WelcomeCredit: getEnvInt64OrDefault("WELCOME_CREDIT", 10_000),
	}
}

func (c *Config) GetDatabaseURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		var v int64
		if _, err := fmt.Sscanf(value, "%d", &v); err == nil {
			return v
		}
	}
	return defaultValue
}
