package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Sellus    SellusConfig
	Vision    VisionConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// SellusConfig holds the remote ERP connection settings
type SellusConfig struct {
	BaseURL       string
	Token         string
	RetryInterval int // minutes between retry coordinator passes; 0 disables
	RetryBatch    int // max unresolved failures per pass
}

// VisionConfig holds the delivery-note extraction settings
type VisionConfig struct {
	GeminiAPIKey string
	GeminiModel  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "wms"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Sellus: SellusConfig{
			BaseURL:       os.Getenv("SELLUS_BASE_URL"),
			Token:         os.Getenv("SELLUS_API_TOKEN"),
			RetryInterval: getEnvInt("SELLUS_RETRY_INTERVAL", 15),
			RetryBatch:    getEnvInt("SELLUS_RETRY_BATCH", 50),
		},
		Vision: VisionConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
