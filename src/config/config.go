package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port     string
	LogLevel string

	// Data source settings
	DataMode       string // "rowstore" or "fixtures"
	RowStoreURL    string
	RowStoreAPIKey string
	FixturesDir    string
	FetchTimeout   time.Duration

	// View engine settings
	ViewCacheTTL    time.Duration
	DatasetsPath    string
	DefaultPageSize int

	// HTTP settings
	AllowedOrigins []string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory (common when running from /backend)
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	dataMode := strings.ToLower(getEnv("DATA_MODE", "fixtures"))
	if dataMode != "rowstore" && dataMode != "fixtures" {
		log.Printf("WARNING: Invalid DATA_MODE '%s'. Falling back to 'fixtures'.", dataMode)
		dataMode = "fixtures"
	}

	rowStoreURL := getEnv("ROWSTORE_URL", "")
	if dataMode == "rowstore" && rowStoreURL == "" {
		log.Fatalf("FATAL: DATA_MODE is 'rowstore' but ROWSTORE_URL is not set.")
	}

	Cfg = &AppConfig{
		// Core
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Data
		DataMode:       dataMode,
		RowStoreURL:    strings.TrimRight(rowStoreURL, "/"),
		RowStoreAPIKey: getEnv("ROWSTORE_API_KEY", ""),
		FixturesDir:    getEnv("FIXTURES_DIR", "data/fixtures"),
		FetchTimeout:   getEnvAsDuration("FETCH_TIMEOUT", 20*time.Second),

		// View engine
		ViewCacheTTL:    getEnvAsDuration("VIEW_CACHE_TTL", 5*time.Minute),
		DatasetsPath:    getEnv("DATASETS_CONFIG_PATH", "config/datasets.yaml"),
		DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 50),

		// HTTP
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DataMode=%s, DatasetsPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DataMode, Cfg.DatasetsPath)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList retrieves and parses a comma-separated environment variable.
func getEnvAsList(key, fallback string) []string {
	valueStr := getEnv(key, fallback)
	if valueStr == "" {
		return []string{}
	}
	parts := strings.Split(valueStr, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
