package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Payment  PaymentConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// UpstreamConfig points at the profiles/payments REST backend this service
// reconciles against.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PaymentConfig struct {
	Razorpay RazorpayConfig
}

type RazorpayConfig struct {
	Key           string
	Secret        string
	AmountInPaise int64
	Currency      string
	DisplayName   string
	ThemeColor    string
}

// SyncConfig tunes the reconciliation and draft-recovery machinery.
type SyncConfig struct {
	ProfileCacheTTL time.Duration
	ResumeDebounce  time.Duration
	DraftPollSpec   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:3001/api/mobile"),
			Timeout: parseDuration(getEnv("UPSTREAM_TIMEOUT", "30s"), 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "profilesync"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Payment: PaymentConfig{
			Razorpay: RazorpayConfig{
				Key:           getEnv("RAZORPAY_KEY", ""),
				Secret:        getEnv("RAZORPAY_SECRET", ""),
				AmountInPaise: parseInt64(getEnv("PROFILE_PRICE_PAISE", "49900"), 49900),
				Currency:      getEnv("PROFILE_PRICE_CURRENCY", "INR"),
				DisplayName:   getEnv("RAZORPAY_DISPLAY_NAME", "Business Profiles"),
				ThemeColor:    getEnv("RAZORPAY_THEME_COLOR", "#667eea"),
			},
		},
		Sync: SyncConfig{
			ProfileCacheTTL: parseDuration(getEnv("PROFILE_CACHE_TTL", "5m"), 5*time.Minute),
			ResumeDebounce:  parseDuration(getEnv("RESUME_DEBOUNCE", "10s"), 10*time.Second),
			DraftPollSpec:   getEnv("DRAFT_POLL_SPEC", "@every 5m"),
		},
	}

	if config.Payment.Razorpay.AmountInPaise <= 0 {
		return nil, fmt.Errorf("PROFILE_PRICE_PAISE must be positive")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
