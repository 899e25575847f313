package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Telegram
	BotToken string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBDSN      string

	// Redis attribute cache; disabled when RedisAddr is empty
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AttributeCacheTTL time.Duration

	// Application
	AppEnv         string
	LogLevel       string
	SuperAdminTgID int64
	WorkerCount    int

	// Rate Limiting
	RateLimitPerUser int
	RateLimitWindow  time.Duration

	// Matchmaking
	InactivityThreshold time.Duration
	ReaperInterval      time.Duration
	FilterMinReferrals  int
	GoodKarmaThreshold  int64

	// Idle nudge
	IdleNudgeAfter    time.Duration
	IdleNudgeInterval time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken: getEnv("BOT_TOKEN", ""),

		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "anonchat"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "anonchat_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBDSN:      getEnv("DB_DSN", ""),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AttributeCacheTTL: getEnvDuration("ATTRIBUTE_CACHE_TTL", 5*time.Minute),

		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		WorkerCount: getEnvInt("WORKER_COUNT", 8),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 20),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		InactivityThreshold: getEnvDuration("INACTIVITY_THRESHOLD", 10*time.Minute),
		ReaperInterval:      getEnvDuration("REAPER_INTERVAL", 30*time.Second),
		FilterMinReferrals:  getEnvInt("FILTER_MIN_REFERRALS", 5),
		GoodKarmaThreshold:  getEnvInt64("GOOD_KARMA_THRESHOLD", 10),

		IdleNudgeAfter:    getEnvDuration("IDLE_NUDGE_AFTER", 24*time.Hour),
		IdleNudgeInterval: getEnvDuration("IDLE_NUDGE_INTERVAL", time.Hour),
	}

	// Parse super admin telegram ID
	superAdminStr := getEnv("SUPER_ADMIN_TELEGRAM_ID", "")
	if superAdminStr != "" {
		id, err := strconv.ParseInt(superAdminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SUPER_ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.SuperAdminTgID = id
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
		if c.DBDSN == "" && c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for %s", c.DBDriver)
		}
	case DriverSQLite:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.RateLimitPerUser <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_USER and RATE_LIMIT_WINDOW must be positive")
	}
	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive")
	}
	if c.ReaperInterval <= 0 || c.ReaperInterval > c.InactivityThreshold {
		return fmt.Errorf("REAPER_INTERVAL must be positive and not exceed INACTIVITY_THRESHOLD")
	}
	if c.FilterMinReferrals < 0 {
		return fmt.Errorf("FILTER_MIN_REFERRALS must not be negative")
	}
	if c.IdleNudgeAfter <= 0 || c.IdleNudgeInterval <= 0 {
		return fmt.Errorf("IDLE_NUDGE_AFTER and IDLE_NUDGE_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBDriver == DriverSQLite {
		return fmt.Errorf("DB_DRIVER sqlite is not allowed in production")
	}
	if c.DBDriver == DriverPostgres && c.DBDSN == "" && c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.SuperAdminTgID == 0 {
		return fmt.Errorf("SUPER_ADMIN_TELEGRAM_ID must be set in production")
	}

	return nil
}

// GetDSN returns DB_DSN when set, otherwise a DSN built for the configured driver.
func (c *Config) GetDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == DriverMySQL {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsAdmin(telegramID int64) bool {
	return c.SuperAdminTgID != 0 && c.SuperAdminTgID == telegramID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration syntax ("90s", "10m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
