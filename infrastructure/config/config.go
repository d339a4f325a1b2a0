package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion       string
	RecordsTable    string
	OwnerIndexName  string // GSI1 - owned-record lookups
	DraftsTable     string // durable draft references
	EventBusName    string
	MetricNamespace string

	// Lambda configuration
	IsLambda bool

	// Supabase storage
	SupabaseURL        string
	SupabaseServiceKey string
	AttachmentBucket   string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Draft handling
	DraftReferenceTTL time.Duration

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:       getEnv("AWS_REGION", "us-west-2"),
		RecordsTable:    getEnv("RECORDS_TABLE", "homeport-records"),
		OwnerIndexName:  getEnv("OWNER_INDEX_NAME", "OwnerIndex"),
		DraftsTable:     getEnv("DRAFTS_TABLE", "homeport-drafts"),
		EventBusName:    getEnv("EVENT_BUS_NAME", "homeport-events"),
		MetricNamespace: getEnv("METRIC_NAMESPACE", "Homeport/Backend"),

		IsLambda: getEnvBool("IS_LAMBDA", false) || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		AttachmentBucket:   getEnv("ATTACHMENT_BUCKET", "homeport-attachments"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "homeport-backend"),

		DraftReferenceTTL: getEnvDuration("DRAFT_REFERENCE_TTL", 7*24*time.Hour),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.RecordsTable == "" {
			return fmt.Errorf("RECORDS_TABLE is required")
		}
		if c.DraftsTable == "" {
			return fmt.Errorf("DRAFTS_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if sec, err := strconv.Atoi(value); err == nil {
			return time.Duration(sec) * time.Second
		}
	}
	return defaultValue
}
