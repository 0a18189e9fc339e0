package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	// CORSAllowedHosts lists origin hosts (host[:port]) allowed by the CORS middleware.
	CORSAllowedHosts []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Probe  ProbeConfig
	Worker WorkerConfig
}

// DatabaseConfig contains connection parameters for the configuration store.
// Driver is either "postgres" or "sqlite"; Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// RedisConfig contains Redis connection parameters. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// ProbeConfig tunes the outbound connectivity probes.
type ProbeConfig struct {
	SimpleTimeout   time.Duration
	FullTimeout     time.Duration
	MaxRedirects    int
	MaxConnsPerHost int
	RateLimit       int
	RateWindow      time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	// ConnectivityInterval of zero disables the connectivity watch worker.
	ConnectivityInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Path:     getEnv("DB_PATH", "shopizi.db"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Probes
	var err error
	if cfg.Probe.SimpleTimeout, err = parseDurationEnv("PROBE_SIMPLE_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid PROBE_SIMPLE_TIMEOUT: %w", err)
	}
	if cfg.Probe.FullTimeout, err = parseDurationEnv("PROBE_FULL_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid PROBE_FULL_TIMEOUT: %w", err)
	}
	if cfg.Probe.RateWindow, err = parseDurationEnv("PROBE_RATE_WINDOW", "1m"); err != nil {
		return nil, fmt.Errorf("invalid PROBE_RATE_WINDOW: %w", err)
	}
	cfg.Probe.MaxRedirects = getEnvInt("PROBE_MAX_REDIRECTS", 5)
	cfg.Probe.MaxConnsPerHost = getEnvInt("PROBE_MAX_CONNS_PER_HOST", 10)
	cfg.Probe.RateLimit = getEnvInt("PROBE_RATE_LIMIT", 30)

	// Workers (durations)
	if cfg.Worker.ConnectivityInterval, err = parseDurationEnv("CONNECTIVITY_CHECK_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid CONNECTIVITY_CHECK_INTERVAL: %w", err)
	}

	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireJWT fails when no JWT secret is configured. Only the HTTP server needs it.
func (c *Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case "postgres":
		if d.Host == "" || d.User == "" || d.Name == "" {
			return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case "sqlite":
		if d.Path == "" {
			return errors.New("database configuration incomplete: DB_PATH must be set for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: use postgres or sqlite", d.Driver)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
