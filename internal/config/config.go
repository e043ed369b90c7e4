package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Badges   BadgeConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	SlowQueryThreshold  time.Duration
	EnableQueryLogging  bool
	HealthCheckInterval time.Duration
	MigrationsPath      string
	ConnectMaxWait      time.Duration
}

// CacheConfig holds cache configuration. Provider is "memory" or
// "redis"; the redis fields are ignored for the memory provider.
type CacheConfig struct {
	Provider   string
	RedisURL   string
	DefaultTTL time.Duration
}

// AuthConfig holds account configuration
type AuthConfig struct {
	BCryptCost        int
	MinPasswordLength int
}

// BadgeConfig holds badge engine configuration. LaunchDate anchors
// the early-adopter criterion; EarlyAdopterWindow is how long after
// launch a sign-up still counts.
type BadgeConfig struct {
	LaunchDate         time.Time
	EarlyAdopterWindow time.Duration
	SeedOnStart        bool
	CatalogCacheTTL    time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	launchDate, err := time.Parse("2006-01-02", getEnv("PLATFORM_LAUNCH_DATE", "2025-11-01"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_LAUNCH_DATE: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "9000"),
			Environment:     env,
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		},
		Database: loadDatabaseConfig(env),
		Cache: CacheConfig{
			Provider:   getEnv("CACHE_PROVIDER", "memory"),
			RedisURL:   getEnv("REDIS_URL", ""),
			DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			BCryptCost:        getIntEnv("BCRYPT_COST", 12),
			MinPasswordLength: getIntEnv("MIN_PASSWORD_LENGTH", 8),
		},
		Badges: BadgeConfig{
			LaunchDate:         launchDate,
			EarlyAdopterWindow: getDurationEnv("EARLY_ADOPTER_WINDOW", 30*24*time.Hour),
			SeedOnStart:        getBoolEnv("BADGE_SEED_ON_START", true),
			CatalogCacheTTL:    getDurationEnv("BADGE_CATALOG_CACHE_TTL", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
			Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadDatabaseConfig(env string) DatabaseConfig {
	var defaultMaxOpen, defaultMaxIdle int
	var defaultConnLifetime time.Duration

	switch env {
	case "production":
		defaultMaxOpen = 50
		defaultMaxIdle = 20
		defaultConnLifetime = 15 * time.Minute
	case "staging":
		defaultMaxOpen = 25
		defaultMaxIdle = 10
		defaultConnLifetime = 10 * time.Minute
	default: // development
		defaultMaxOpen = 10
		defaultMaxIdle = 5
		defaultConnLifetime = 5 * time.Minute
	}

	return DatabaseConfig{
		URL:                 os.Getenv("DATABASE_URL"),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpen),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdle),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", defaultConnLifetime),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		ConnectMaxWait:      getDurationEnv("DB_CONNECT_MAX_WAIT", 30*time.Second),
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Badges.Validate(); err != nil {
		return fmt.Errorf("badge config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

// Validate validates database configuration
func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if c.Provider != "memory" && c.Provider != "redis" {
		return fmt.Errorf("cache provider must be memory or redis")
	}

	if c.Provider == "redis" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis cache provider")
	}

	return nil
}

// Validate validates auth configuration
func (a *AuthConfig) Validate() error {
	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.MinPasswordLength < 6 {
		return fmt.Errorf("minimum password length must be at least 6")
	}

	return nil
}

// Validate validates badge configuration
func (b *BadgeConfig) Validate() error {
	if b.LaunchDate.IsZero() {
		return fmt.Errorf("launch date is required")
	}

	if b.EarlyAdopterWindow <= 0 {
		return fmt.Errorf("early adopter window must be positive")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
