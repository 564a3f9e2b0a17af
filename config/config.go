package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	APIBaseURL               string
	Port                     string
	OriginURL                string
	GoEnv                    string
	TokenStoreURL            string
	MapsAPIKey               string
	MapsScriptURL            string
	NotificationPollInterval time.Duration
	PaymentPollDelay         time.Duration
	PaymentPollMaxAttempts   int
	APITimeout               time.Duration
	AWSRegion                string
	AWSReceiptBucket         string
	AWSAccessKeyID           string
	AWSSecretAccessKey       string
	LogLevel                 string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	port := getEnv("PORT", "8080")

	notificationInterval, err := getDuration("NOTIFICATION_POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	paymentDelay, err := getDuration("PAYMENT_POLL_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}
	apiTimeout, err := getDuration("API_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getInt("PAYMENT_POLL_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	config := &Config{
		APIBaseURL:               strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		Port:                     port,
		OriginURL:                strings.TrimRight(getEnv("ORIGIN_URL", "http://localhost:"+port), "/"),
		GoEnv:                    getEnv("GO_ENV", "development"),
		TokenStoreURL:            getEnv("TOKEN_STORE_URL", "techsupport.db"),
		MapsAPIKey:               getEnv("MAPS_API_KEY", "YOUR_GOOGLE_MAPS_API_KEY"),
		MapsScriptURL:            getEnv("MAPS_SCRIPT_URL", ""),
		NotificationPollInterval: notificationInterval,
		PaymentPollDelay:         paymentDelay,
		PaymentPollMaxAttempts:   maxAttempts,
		APITimeout:               apiTimeout,
		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		AWSReceiptBucket:         getEnv("AWS_RECEIPT_BUCKET", ""),
		AWSAccessKeyID:           getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must start with http:// or https://")
	}
	if c.PaymentPollMaxAttempts <= 0 {
		return fmt.Errorf("PAYMENT_POLL_MAX_ATTEMPTS must be positive")
	}
	if c.NotificationPollInterval <= 0 {
		return fmt.Errorf("NOTIFICATION_POLL_INTERVAL must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// ReceiptsEnabled reports whether paid checkouts should be archived to S3
func (c *Config) ReceiptsEnabled() bool {
	return c.AWSReceiptBucket != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetConfig registers the loaded configuration
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// GetConfig returns the registered configuration
func GetConfig() *Config {
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
