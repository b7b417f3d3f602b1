package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Realtime   RealtimeConfig
	JWT        JWTConfig
	Server     ServerConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds the broker endpoint, e.g. redis://:password@host:6379/0.
type RedisConfig struct {
	URL string
}

// RealtimeConfig tunes event fan-out inside one process.
type RealtimeConfig struct {
	QueueSize      int
	MaxBackoff     time.Duration
	HealthInterval time.Duration
	// MaxWatchers caps the open websocket watches per tenant in one process.
	MaxWatchers int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret    string //nolint:gosec // G117: JWT signing secret config
	AccessTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("BOARDLIVE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("BOARDLIVE_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	queueSize, err := getEnvInt("BOARDLIVE_HUB_QUEUE_SIZE", 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxBackoff, err := getEnvDuration("BOARDLIVE_BRIDGE_MAX_BACKOFF", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	healthInterval, err := getEnvDuration("BOARDLIVE_BRIDGE_HEALTH_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxWatchers, err := getEnvInt("BOARDLIVE_WS_MAX_WATCHERS", 256)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("BOARDLIVE_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("BOARDLIVE_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("BOARDLIVE_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("BOARDLIVE_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("BOARDLIVE_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("BOARDLIVE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("BOARDLIVE_DB_USER", "boardlive"),
			Password: getEnv("BOARDLIVE_DB_PASSWORD", ""),
			DBName:   getEnv("BOARDLIVE_DB_NAME", "boardlive_dev"),
			SSLMode:  getEnv("BOARDLIVE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			URL: getEnv("BOARDLIVE_REDIS_URL", "redis://localhost:6379/0"),
		},
		Realtime: RealtimeConfig{
			QueueSize:      queueSize,
			MaxBackoff:     maxBackoff,
			HealthInterval: healthInterval,
			MaxWatchers:    maxWatchers,
		},
		JWT: JWTConfig{
			Secret:    getEnv("BOARDLIVE_JWT_SECRET", ""),
			AccessTTL: accessTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("BOARDLIVE_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("BOARDLIVE_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("BOARDLIVE_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("BOARDLIVE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("BOARDLIVE_REDIS_URL must use redis:// or rediss://, got %q", c.Redis.URL)
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("BOARDLIVE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("BOARDLIVE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Realtime.QueueSize < 1 {
		return fmt.Errorf("BOARDLIVE_HUB_QUEUE_SIZE must be >= 1, got %d", c.Realtime.QueueSize)
	}
	if c.Realtime.MaxBackoff <= 0 {
		return fmt.Errorf("BOARDLIVE_BRIDGE_MAX_BACKOFF must be positive, got %s", c.Realtime.MaxBackoff)
	}
	if c.Realtime.HealthInterval <= 0 {
		return fmt.Errorf("BOARDLIVE_BRIDGE_HEALTH_INTERVAL must be positive, got %s", c.Realtime.HealthInterval)
	}
	if c.Realtime.MaxWatchers < 1 {
		return fmt.Errorf("BOARDLIVE_WS_MAX_WATCHERS must be >= 1, got %d", c.Realtime.MaxWatchers)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("BOARDLIVE_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("BOARDLIVE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("BOARDLIVE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
