package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	S3       S3Config
	OTEL     OTELConfig
	Payment  PaymentConfig
	Pricing  PricingConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
	AllowOrigins    string
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FirebaseConfig holds Firebase Admin SDK configuration
type FirebaseConfig struct {
	ProjectID   string
	PrivateKey  string // Base64 encoded
	ClientEmail string
}

// JWTConfig holds access token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AuthConfig holds login policy
type AuthConfig struct {
	AdminEmails []string // users with these emails get the admin role on login
}

// S3Config holds S3-compatible storage configuration for event images
type S3Config struct {
	Endpoint string
	Region   string
	Bucket   string
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	InstanceID     string
	Token          string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// PaymentConfig holds iPaymu gateway configuration
type PaymentConfig struct {
	IPaymuAPIKey   string
	IPaymuVA       string
	IPaymuBaseURL  string
	NotifyURL      string
	IdempotencyTTL time.Duration
}

// PricingConfig holds listing price quote settings
type PricingConfig struct {
	QuoteCacheTTL      time.Duration
	SeedDefaultCatalog bool
}

// JobsConfig holds background job schedules
type JobsConfig struct {
	Enabled               bool
	ListingExpirySchedule string // cron expression or descriptor such as "@every 5m"
	Timeout               time.Duration
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 5),
			AllowOrigins:    getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "eventhub"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvAsInt64("REDIS_DB", 0)),
		},
		Firebase: FirebaseConfig{
			ProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
			PrivateKey:  getEnv("FIREBASE_PRIVATE_KEY", ""),
			ClientEmail: getEnv("FIREBASE_CLIENT_EMAIL", ""),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		},
		Auth: AuthConfig{
			AdminEmails: getEnvAsList("ADMIN_EMAILS"),
		},
		S3: S3Config{
			Endpoint: getEnv("S3_ENDPOINT", ""),
			Region:   getEnv("S3_REGION", "us-east-1"),
			Bucket:   getEnv("S3_BUCKET", "event-images"),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "eventhub-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Payment: PaymentConfig{
			IPaymuAPIKey:   getEnv("IPAYMU_API_KEY", ""),
			IPaymuVA:       getEnv("IPAYMU_VA", ""),
			IPaymuBaseURL:  getEnv("IPAYMU_BASE_URL", "https://sandbox.ipaymu.com"),
			NotifyURL:      getEnv("PAYMENT_NOTIFY_URL", ""),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Pricing: PricingConfig{
			QuoteCacheTTL:      getEnvAsDuration("PRICE_QUOTE_CACHE_TTL", 10*time.Minute),
			SeedDefaultCatalog: getEnvAsBool("SEED_DEFAULT_CATALOG", true),
		},
		Jobs: JobsConfig{
			Enabled:               getEnvAsBool("JOBS_ENABLED", true),
			ListingExpirySchedule: getEnv("LISTING_EXPIRY_SCHEDULE", "@every 5m"),
			Timeout:               getEnvAsDuration("JOB_TIMEOUT", time.Minute),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.Firebase.PrivateKey == "" {
		return fmt.Errorf("FIREBASE_PRIVATE_KEY is required")
	}
	if c.Firebase.ClientEmail == "" {
		return fmt.Errorf("FIREBASE_CLIENT_EMAIL is required")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "10m" or "24h"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
