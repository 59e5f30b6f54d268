package config

import (
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the billboard service.
type Config struct {
	// Database
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Server
	Port           string
	BaseURL        string
	TrustedProxies []string
	AllowedOrigins []string

	// Security
	JWTSecret string

	// Upload storage
	UploadsDir string

	// Analyzers
	DetectorURL     string
	GeminiAPIKey    string
	GeminiModel     string
	AnalysisTimeout time.Duration

	// Municipality notification
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	MunicipalityEmail string

	// RabbitMQ (optional downstream publishing)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// Load loads configuration from a local .env file (if present) and the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "billboard"),

		Port:    getEnv("PORT", "3001"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3001"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),

		DetectorURL:     getEnv("DETECTOR_URL", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AnalysisTimeout: getDurationEnv("ANALYSIS_TIMEOUT", 90*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@billboard-inspect.app"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Billboard Inspector"),
		MunicipalityEmail: getEnv("MUNICIPALITY_EMAIL", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "billboard"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "billboard.report.analyzed"),
	}

	cfg.TrustedProxies = getListEnv("TRUSTED_PROXIES")
	cfg.AllowedOrigins = getListEnv("ALLOWED_ORIGINS")

	return cfg
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getListEnv gets a comma-separated environment variable as a slice.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
