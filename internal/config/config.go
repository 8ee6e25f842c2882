package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the credscan server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MLService MLServiceConfig
	Fetch     FetchConfig
	Analysis  AnalysisConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// IsProduction reports whether the server runs in the production-designated
// environment, which controls error-message sanitization.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type MLServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type FetchConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

type AnalysisConfig struct {
	MaxTextLength     int
	ResultCacheTTL    time.Duration
	RequestsPerMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CREDSCAN_PORT", 8080),
			Env:  envString("CREDSCAN_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		MLService: MLServiceConfig{
			BaseURL: os.Getenv("ML_SERVICE_URL"),
			Timeout: envDuration("ML_SERVICE_TIMEOUT", 30*time.Second),
		},
		Fetch: FetchConfig{
			Timeout:      envDuration("FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes: int64(envInt("FETCH_MAX_BODY_BYTES", 2<<20)),
			UserAgent:    envString("FETCH_USER_AGENT", "credscan/1.0"),
		},
		Analysis: AnalysisConfig{
			MaxTextLength:     envInt("ANALYSIS_MAX_TEXT_LENGTH", 50000),
			ResultCacheTTL:    envDuration("ANALYSIS_RESULT_CACHE_TTL", 24*time.Hour),
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.MLService.BaseURL == "" {
		return fmt.Errorf("ML_SERVICE_URL is required")
	}
	if !strings.HasPrefix(c.MLService.BaseURL, "http://") && !strings.HasPrefix(c.MLService.BaseURL, "https://") {
		return fmt.Errorf("ML_SERVICE_URL must start with http:// or https://, got %q", c.MLService.BaseURL)
	}

	if c.Analysis.MaxTextLength <= 0 {
		return fmt.Errorf("ANALYSIS_MAX_TEXT_LENGTH must be positive, got %d", c.Analysis.MaxTextLength)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
