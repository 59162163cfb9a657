package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	StoreBackend   string   `mapstructure:"STORE_BACKEND"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL       string   `mapstructure:"REDIS_URL"`
	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`
	PageSize       int      `mapstructure:"PAGE_SIZE"`
	SeedFile       string   `mapstructure:"SEED_FILE"`
	LogLevel       string   `mapstructure:"LOG_LEVEL"`
	Timezone       string   `mapstructure:"TZ"`
}

var keys = []string{
	"PORT", "ENV", "STORE_BACKEND", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"REDIS_URL", "AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "PAGE_SIZE", "SEED_FILE",
	"LOG_LEVEL", "TZ",
}

// Load reads the environment and an optional .env file in the working
// directory. It does not validate; call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1MiB")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TZ", "Local")

	// Unmarshal only sees env vars that are bound explicitly.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Location is the timezone that defines "today".
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// BodyLimitBytes parses BODY_LIMIT ("1MiB", "512KB").
func (c *Config) BodyLimitBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.BodyLimit)
	if err != nil {
		return 0, fmt.Errorf("BODY_LIMIT %q: %w", c.BodyLimit, err)
	}
	return n, nil
}

// Validate checks that the configuration is safe to run. Outside development
// a signing key and issuer are required so that bearer tokens are enforced.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is %q", BackendPostgres)
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND is %q", BackendRedis)
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q, %q or %q, got %q",
			BackendMemory, BackendPostgres, BackendRedis, c.StoreBackend)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if _, err := c.BodyLimitBytes(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if !c.IsDev() {
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required outside development (ENV=%q)", c.Env)
		}
		if c.AuthIssuer == "" {
			return fmt.Errorf("AUTH_ISSUER is required outside development (ENV=%q)", c.Env)
		}
	}
	return nil
}
