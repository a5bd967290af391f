// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for images without /usr/share/zoneinfo

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-in-production"

// Config holds all application configuration. It is built once in main and
// passed by value.
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"
	MaxUploadMB int

	DatabaseURL string
	RedisURL    string

	// Security
	JWTSecret        string
	JWTIssuer        string
	CitizenTokenTTL  time.Duration
	EmployeeTokenTTL time.Duration
	AllowedOrigins   []string
	RateLimitRPM     int

	// Reports
	TimeZone         string
	DailyReportLimit int
	OTPTTL           time.Duration

	SMTP       SMTPConfig
	Cloudinary CloudinaryConfig

	// Photo storage fallback when Cloudinary is not configured
	UploadFolder   string
	LocalUploadDir string
	PublicBaseURL  string

	// First Super Admin, created at startup when none exists
	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string
}

// SMTPConfig is the outbound mail server. An empty Host disables delivery
// and OTP mails are logged instead.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// CloudinaryConfig holds the image host credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether all credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTIssuer:        getEnv("JWT_ISSUER", "civicdesk"),
		CitizenTokenTTL:  getEnvDuration("CITIZEN_TOKEN_TTL", 5*24*time.Hour),
		EmployeeTokenTTL: getEnvDuration("EMPLOYEE_TOKEN_TTL", 8*time.Hour),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:     getEnvInt("RATE_LIMIT_RPM", 120),

		TimeZone:         getEnv("TIMEZONE", "Asia/Kolkata"),
		DailyReportLimit: getEnvInt("DAILY_REPORT_LIMIT", 3),
		OTPTTL:           getEnvDuration("OTP_TTL", 10*time.Minute),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "CivicDesk <no-reply@civicdesk.local>"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},

		UploadFolder:   getEnv("UPLOAD_FOLDER", "civicdesk/reports"),
		LocalUploadDir: getEnv("LOCAL_UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
		SuperAdminName:     getEnv("SUPER_ADMIN_NAME", "Super Admin"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DailyReportLimit <= 0 {
		return fmt.Errorf("DAILY_REPORT_LIMIT must be positive")
	}
	if c.CitizenTokenTTL <= 0 || c.EmployeeTokenTTL <= 0 || c.OTPTTL <= 0 {
		return fmt.Errorf("token and OTP lifetimes must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	// Validate required fields in production
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.JWTSecret == devJWTSecret || len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to at least 32 characters in production")
		}
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required in production")
		}
		if !c.Cloudinary.Enabled() {
			return fmt.Errorf("CLOUDINARY_* credentials are required in production")
		}
	}
	return nil
}

// Location resolves TIMEZONE, the zone whose midnight resets the daily
// report limit.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
