package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=reservation port=5432 sslmode=disable"

type Config struct {
	HTTPPort           string
	DatabaseDSN        string
	JWTSecret          string
	JWTExpire          time.Duration
	CookieExpireDays   int
	Env                string
	CORSOrigins        string
	LogLevel           string
	PublicBaseURL      string
	SMTP               SMTPConfig
	RateLimitRPS       float64
	RateLimitBurst     int
	AuditRetentionDays int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Warnings lists settings left at development defaults.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDSN {
		w = append(w, "DATABASE_DSN is using the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == "http://localhost:3000" {
		w = append(w, "CORS_ALLOWED_ORIGINS is using the default value, set your own domain for production")
	}
	if c.SMTP.Host == "" {
		w = append(w, "SMTP_HOST is empty, password reset mails are written to the log")
	}
	return w
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getEnv("HTTP_PORT", "5000")
	cfg := &Config{
		HTTPPort:      port,
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		Env:           getEnv("APP_ENV", "development"),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	var err error
	if cfg.JWTExpire, err = time.ParseDuration(getEnv("JWT_EXPIRE", "720h")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}

	// an unusable cookie lifetime falls back to 30 days
	cfg.CookieExpireDays, err = strconv.Atoi(getEnv("JWT_COOKIE_EXPIRE", "30"))
	if err != nil || cfg.CookieExpireDays <= 0 {
		cfg.CookieExpireDays = 30
	}

	if cfg.SMTP.Port, err = strconv.Atoi(getEnv("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.AuditRetentionDays, err = strconv.Atoi(getEnv("AUDIT_RETENTION_DAYS", "90")); err != nil {
		return nil, fmt.Errorf("AUDIT_RETENTION_DAYS: %w", err)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
