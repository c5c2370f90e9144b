package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Session     SessionConfig
	Marketplace MarketplaceConfig
	Checkout    CheckoutConfig
	Storage     StorageConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type SessionConfig struct {
	Secret string
}

type MarketplaceConfig struct {
	BaseURL string
	APIKey  string
	UseMock bool
}

type CheckoutConfig struct {
	EventTicketLimit int
	PollAttempts     int
	PollInterval     time.Duration
}

type StorageConfig struct {
	Path string // sqlite database file
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Marketplace: MarketplaceConfig{
			BaseURL: getEnv("MARKETPLACE_BASE_URL", "http://localhost:9000"),
			APIKey:  getEnv("MARKETPLACE_API_KEY", ""),
			UseMock: getEnvAsBool("MARKETPLACE_USE_MOCK", false),
		},
		Checkout: CheckoutConfig{
			EventTicketLimit: getEnvAsInt("CHECKOUT_EVENT_TICKET_LIMIT", 6),
			PollAttempts:     getEnvAsInt("CHECKOUT_POLL_ATTEMPTS", 8),
			PollInterval:     time.Duration(getEnvAsInt("CHECKOUT_POLL_INTERVAL_MS", 1500)) * time.Millisecond,
		},
		Storage: StorageConfig{
			Path: getEnv("STORAGE_PATH", "ticketcart.db"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as an integer with a fallback value
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getEnvAsBool gets an environment variable as a boolean with a fallback value
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}
