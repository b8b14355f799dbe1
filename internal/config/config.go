package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port              string
	DBConn            string
	LogLevel          string
	JWTSecret         string
	JWTExpiresMinutes int
	MinimumDueRate    decimal.Decimal
	GeminiAPIKey      string
	GeminiModel       string
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
	ReminderDays      int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBConn:       getEnv("DB_CONN", ""), // empty selects the in-memory store
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-key-change"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@cartera.app"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	expires, err := strconv.Atoi(getEnv("JWT_EXPIRES_MINUTES", "240"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_MINUTES: %w", err)
	}
	cfg.JWTExpiresMinutes = expires

	rate, err := decimal.NewFromString(getEnv("MIN_DUE_RATE", "0.03"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_DUE_RATE: %w", err)
	}
	cfg.MinimumDueRate = rate

	days, err := strconv.Atoi(getEnv("REMINDER_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_DAYS: %w", err)
	}
	cfg.ReminderDays = days

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
