package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server Configuration
	Port        string
	Environment string
	Debug       bool

	// Database Configuration
	MongoURI string
	DBName   string

	// JWT Configuration
	JWTSecret        string
	JWTRefreshSecret string

	// Storage Configuration
	StorageProvider string
	UploadPath      string
	MaxUploadSize   int64
	AllowedTypes    []string

	// S3-compatible blob store
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// Security Configuration
	CORSAllowedOrigins []string
	RateLimitEnabled   bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// Application Configuration
	AppName    string
	AppVersion string
	AppURL     string
}

var AppConfig *Config

// LoadConfig loads configuration from environment variables. A .env file is
// loaded first when present.
func LoadConfig() *Config {
	godotenv.Load()

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Debug:       getEnvAsBool("DEBUG", true),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "filevault"),

		JWTSecret:        getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-super-secret-refresh-key-change-in-production"),

		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		UploadPath:      getEnv("UPLOAD_PATH", "./uploads"),
		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE", 104857600), // 100MB
		AllowedTypes:    getEnvAsSlice("ALLOWED_FILE_TYPES", []string{}),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8080",
		}),
		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),

		AppName:    getEnv("APP_NAME", "FileVault"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		AppURL:     getEnv("APP_URL", "http://localhost:8080"),
	}

	AppConfig = config
	return config
}

// ValidateConfig checks required settings for the selected providers.
func (c *Config) ValidateConfig() error {
	if c.StorageProvider == "s3" {
		if c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("s3 storage requires S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY")
		}
	}
	if c.IsProduction() && strings.Contains(c.JWTSecret, "change-in-production") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	parsed, _ := time.ParseDuration(defaultValue)
	return parsed
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
