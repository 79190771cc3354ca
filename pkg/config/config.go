package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/woodsxwu/WalkInNow/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	OTEL       OTELConfig
	Booking    BookingConfig
	Carefiniti CarefinitiConfig
	Ocean      OceanConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env            string
	AllowedOrigins []string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	RequestDeadline time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig controls the directory response cache
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// BookingConfig bounds availability queries
type BookingConfig struct {
	DaysToScan         int
	MaxDaysToScan      int
	CalendarDays       int
	MaxCalendarDays    int
	RequestTimeout     time.Duration
	DayConcurrency     int
	ClinicConcurrency  int
	EnableMockProvider bool
}

// CarefinitiConfig holds Carefiniti adapter defaults
type CarefinitiConfig struct {
	URLTemplate string
	Timezone    string
}

// OceanConfig holds Ocean adapter settings
type OceanConfig struct {
	BaseURL  string
	APIKey   string
	Timezone string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			RequestDeadline: getEnvAsDuration("SERVER_REQUEST_DEADLINE", 25*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "walkinnow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			TTL:     getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "walkinnow-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Booking: BookingConfig{
			DaysToScan:         getEnvAsInt("BOOKING_DAYS_TO_SCAN", 14),
			MaxDaysToScan:      getEnvAsInt("BOOKING_MAX_DAYS_TO_SCAN", 60),
			CalendarDays:       getEnvAsInt("BOOKING_CALENDAR_DAYS", 7),
			MaxCalendarDays:    getEnvAsInt("BOOKING_MAX_CALENDAR_DAYS", 31),
			RequestTimeout:     getEnvAsDuration("BOOKING_REQUEST_TIMEOUT", 8*time.Second),
			DayConcurrency:     getEnvAsInt("BOOKING_DAY_CONCURRENCY", 7),
			ClinicConcurrency:  getEnvAsInt("BOOKING_CLINIC_CONCURRENCY", 8),
			EnableMockProvider: getEnvAsBool("BOOKING_ENABLE_MOCK_PROVIDER", false),
		},
		Carefiniti: CarefinitiConfig{
			URLTemplate: getEnv("CAREFINITI_URL_TEMPLATE", ""),
			Timezone:    getEnv("CAREFINITI_TIMEZONE", "America/Toronto"),
		},
		Ocean: OceanConfig{
			BaseURL:  getEnv("OCEAN_BASE_URL", "https://api.ocean.health"),
			APIKey:   getEnv("OCEAN_API_KEY", ""),
			Timezone: getEnv("OCEAN_TIMEZONE", "America/Toronto"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects bounds that would make availability queries meaningless
func (c *Config) Validate() error {
	b := c.Booking
	positive := map[string]int{
		"BOOKING_DAYS_TO_SCAN":       b.DaysToScan,
		"BOOKING_MAX_DAYS_TO_SCAN":   b.MaxDaysToScan,
		"BOOKING_CALENDAR_DAYS":      b.CalendarDays,
		"BOOKING_MAX_CALENDAR_DAYS":  b.MaxCalendarDays,
		"BOOKING_DAY_CONCURRENCY":    b.DayConcurrency,
		"BOOKING_CLINIC_CONCURRENCY": b.ClinicConcurrency,
	}
	for key, v := range positive {
		if v <= 0 {
			return apperrors.NewConfigurationError(fmt.Sprintf("%s must be positive, got %d", key, v), nil)
		}
	}
	if b.RequestTimeout <= 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("BOOKING_REQUEST_TIMEOUT must be positive, got %s", b.RequestTimeout), nil)
	}
	if c.Server.RequestDeadline <= 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("SERVER_REQUEST_DEADLINE must be positive, got %s", c.Server.RequestDeadline), nil)
	}
	if b.DaysToScan > b.MaxDaysToScan {
		return apperrors.NewConfigurationError(fmt.Sprintf("BOOKING_DAYS_TO_SCAN (%d) exceeds BOOKING_MAX_DAYS_TO_SCAN (%d)", b.DaysToScan, b.MaxDaysToScan), nil)
	}
	if b.CalendarDays > b.MaxCalendarDays {
		return apperrors.NewConfigurationError(fmt.Sprintf("BOOKING_CALENDAR_DAYS (%d) exceeds BOOKING_MAX_CALENDAR_DAYS (%d)", b.CalendarDays, b.MaxCalendarDays), nil)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServerAddr returns the listen address
func (c *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WriteTimeout leaves room past the request deadline to encode and flush
// the response
func (c *ServerConfig) WriteTimeout() time.Duration {
	return c.RequestDeadline + 10*time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
