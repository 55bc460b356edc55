package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	DefaultRateLimitPerMin = 30
	SessionCookieName      = "ama_session"
	ShutdownTimeout        = 10 * time.Second
)

var knownWeakSecrets = []string{
	"secret", "secret_key_change_me", "change-me", "password", "ama",
}

type Config struct {
	Port               int      `env:"PORT" envDefault:"8080"`
	AppEnv             string   `env:"APP_ENV" envDefault:"development"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDriver     string   `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL        string   `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=ama port=5432 sslmode=disable"`
	SessionSecret      string   `env:"SESSION_SECRET" envDefault:"secret_key_change_me"`
	SiteURL            string   `env:"SITE_URL" envDefault:"http://localhost:8080"`
	Timezone           string   `env:"TIMEZONE" envDefault:"Local"`
	RedisURL           string   `env:"REDIS_URL"`
	RateLimitPerMin    int      `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	TemplatesDir       string   `env:"TEMPLATES_DIR" envDefault:"./web/templates"`
	StaticDir          string   `env:"STATIC_DIR" envDefault:"./web/static"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location is the timezone whose calendar day bounds a session.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) RateLimit() int {
	if c.RateLimitPerMin <= 0 {
		return DefaultRateLimitPerMin
	}
	return c.RateLimitPerMin
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMySQL, c.DatabaseDriver)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid location: %w", c.Timezone, err)
	}

	if c.IsProduction() {
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters in production")
		}
		for _, weak := range knownWeakSecrets {
			if strings.EqualFold(c.SessionSecret, weak) {
				return fmt.Errorf("SESSION_SECRET is a known weak default; set a strong secret in production")
			}
		}
	}

	return nil
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
