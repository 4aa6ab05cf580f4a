package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Stats     StatsConfig
	Chart     ChartConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// UpstreamConfig points at the ticket tracker API and its credentials
type UpstreamConfig struct {
	URL        string
	Timeout    time.Duration
	AuthMode   string // static, jwt
	Token      string
	JWTSecret  string
	JWTSubject string
	JWTIssuer  string
	JWTTTL     time.Duration
}

// CacheConfig controls dataset freshness
type CacheConfig struct {
	Freshness    time.Duration
	SingleFlight bool
	Store        string // memory, redis
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	URL         string
	SnapshotKey string
}

// StatsConfig selects the aggregation policy
type StatsConfig struct {
	Policy   string // default, legacy
	Timezone string
}

// ChartConfig controls chart presentation
type ChartConfig struct {
	Locale string
	Width  int
	Height int
}

// RateLimitConfig configures per-IP request limiting
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json, text
	Output     string // stdout, file, both
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	ErrMissingUpstreamURL   = errors.New("UPSTREAM_URL is required")
	ErrInvalidAuthMode      = errors.New("UPSTREAM_AUTH_MODE must be static or jwt")
	ErrMissingToken         = errors.New("UPSTREAM_TOKEN is required when UPSTREAM_AUTH_MODE=static")
	ErrMissingJWTSecret     = errors.New("UPSTREAM_JWT_SECRET is required when UPSTREAM_AUTH_MODE=jwt")
	ErrInvalidFreshness     = errors.New("CACHE_FRESHNESS must be positive")
	ErrInvalidSnapshotStore = errors.New("SNAPSHOT_STORE must be memory or redis")
	ErrInvalidPolicy        = errors.New("STATS_POLICY must be default or legacy")
	ErrInvalidTimezone      = errors.New("TIMEZONE is not a known location")
	ErrInvalidRateLimit     = errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
)

// Load loads configuration from the environment, reading a .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvOrDefault("SERVER_PORT", "5000"),
			ReadTimeout:  getEnvOrDefaultDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvOrDefaultDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvOrDefaultDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnvOrDefault("ENV", "development"),
		},
		Upstream: UpstreamConfig{
			URL:        getEnvOrDefault("UPSTREAM_URL", "http://localhost:8080/api/ticket/unpaginated"),
			Timeout:    getEnvOrDefaultDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			AuthMode:   strings.ToLower(getEnvOrDefault("UPSTREAM_AUTH_MODE", "jwt")),
			Token:      os.Getenv("UPSTREAM_TOKEN"),
			JWTSecret:  os.Getenv("UPSTREAM_JWT_SECRET"),
			JWTSubject: getEnvOrDefault("UPSTREAM_JWT_SUBJECT", "ticketstats"),
			JWTIssuer:  getEnvOrDefault("UPSTREAM_JWT_ISSUER", "ticketstats"),
			JWTTTL:     getEnvOrDefaultDuration("UPSTREAM_JWT_TTL", 24*time.Hour),
		},
		Cache: CacheConfig{
			Freshness:    getEnvOrDefaultDuration("CACHE_FRESHNESS", 60*time.Second),
			SingleFlight: getEnvOrDefaultBool("CACHE_SINGLE_FLIGHT", true),
			Store:        strings.ToLower(getEnvOrDefault("SNAPSHOT_STORE", "memory")),
		},
		Redis: RedisConfig{
			URL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
			SnapshotKey: getEnvOrDefault("REDIS_SNAPSHOT_KEY", "ticketstats:snapshot"),
		},
		Stats: StatsConfig{
			Policy:   strings.ToLower(getEnvOrDefault("STATS_POLICY", "default")),
			Timezone: getEnvOrDefault("TIMEZONE", "UTC"),
		},
		Chart: ChartConfig{
			Locale: getEnvOrDefault("CHART_LOCALE", "en"),
			Width:  getEnvOrDefaultInt("CHART_WIDTH", 1024),
			Height: getEnvOrDefaultInt("CHART_HEIGHT", 512),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvOrDefaultBool("RATE_LIMIT_ENABLED", false),
			Requests: getEnvOrDefaultInt("RATE_LIMIT_REQUESTS", 120),
			Window:   getEnvOrDefaultDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins:   parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
			AllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", false),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			Output:     getEnvOrDefault("LOG_OUTPUT", "stdout"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvOrDefaultInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvOrDefaultInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvOrDefaultInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Upstream.URL == "" {
		return ErrMissingUpstreamURL
	}

	switch c.Upstream.AuthMode {
	case "static":
		if c.Upstream.Token == "" {
			return ErrMissingToken
		}
	case "jwt":
		if c.Upstream.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
	default:
		return ErrInvalidAuthMode
	}

	if c.Cache.Freshness <= 0 {
		return ErrInvalidFreshness
	}

	if c.Cache.Store != "memory" && c.Cache.Store != "redis" {
		return ErrInvalidSnapshotStore
	}

	if c.Stats.Policy != "default" && c.Stats.Policy != "legacy" {
		return ErrInvalidPolicy
	}

	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Stats.Timezone)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return ErrInvalidRateLimit
	}

	return nil
}

// Location returns the timezone used for zone-less upstream timestamps
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NeedsRedis reports whether any component is configured to use Redis
func (c *Config) NeedsRedis() bool {
	return c.Cache.Store == "redis" || c.RateLimit.Enabled
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// plain integers are seconds
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
