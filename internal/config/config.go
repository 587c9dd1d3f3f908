package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Gateway  GatewayConfig
	Fee      FeeConfig
	Notify   NotifyConfig
	Poll     PollConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// GatewayConfig holds Instamojo gateway configuration
type GatewayConfig struct {
	BaseURL   string
	APIKey    string
	AuthToken string
	Purpose   string
}

// FeeConfig holds the application fee pricing table. Amounts are in the
// smallest currency unit.
type FeeConfig struct {
	Base          int64
	Increment     int64
	MaxCofounders int
}

// NotifyConfig holds notification delivery configuration
type NotifyConfig struct {
	WebhookURL string
}

// PollConfig holds payment reconciliation poller configuration
type PollConfig struct {
	Schedule       string
	StaleAfterMins int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		Gateway:  loadGatewayConfig(appMode),
		Fee:      loadFeeConfig(),
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Poll: PollConfig{
			Schedule:       getEnv("PAYMENT_POLL_SCHEDULE", "@every 2m"),
			StaleAfterMins: getEnvInt("PAYMENT_POLL_STALE_MINUTES", 5),
		},
	}

	AppConfig = config

	log.Printf("configuration loaded [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "svco_apply"),
	}
}

// loadGatewayConfig loads Instamojo config based on mode
func loadGatewayConfig(mode string) GatewayConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return GatewayConfig{
		BaseURL:   getEnv(prefix+"INSTAMOJO_BASE_URL", "https://test.instamojo.com/api/1.1"),
		APIKey:    getEnv(prefix+"INSTAMOJO_API_KEY", ""),
		AuthToken: getEnv(prefix+"INSTAMOJO_AUTH_TOKEN", ""),
		Purpose:   getEnv("INSTAMOJO_PURPOSE", "Application fee"),
	}
}

// loadFeeConfig loads the fee pricing table. Defaults: the base fee covers a
// team with one co-founder, every additional co-founder adds the increment.
func loadFeeConfig() FeeConfig {
	return FeeConfig{
		Base:          getEnvInt64("FEE_BASE_AMOUNT", 2000),
		Increment:     getEnvInt64("FEE_COFOUNDER_INCREMENT", 1000),
		MaxCofounders: getEnvInt("FEE_MAX_COFOUNDERS", 5),
	}
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
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvInt64 gets an int64 environment variable with default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://apply.sv.co"
	}
	return origins
}
