package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	defaultJWTSecret        = "default_jwt_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
	minProductionSecretLen  = 32
)

// Config holds all configuration for our application
type Config struct {
	Environment              string `env:"APP_ENV" env-default:"development"`
	Port                     string `env:"PORT" env-default:"3001"`
	Origin                   string `env:"ORIGIN" env-default:"http://localhost:4200"`
	RequireEmailVerification bool   `env:"REQUIRE_EMAIL_VERIFICATION" env-default:"false"`

	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	RabbitMQ  RabbitMQConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            string        `env:"DB_PORT" env-default:"3306"`
	Username        string        `env:"DB_USERNAME" env-default:"root"`
	Password        string        `env:"DB_PASSWORD" env-default:""`
	Name            string        `env:"DB_NAME" env-default:"medi"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

// JWTConfig holds the signing material for both token classes.
type JWTConfig struct {
	AccessSecret  string        `env:"JWT_SECRET" env-default:"default_jwt_secret"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" env-default:"default_refresh_secret"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
	Issuer        string        `env:"JWT_ISSUER" env-default:"healthcare-booking-server"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"10"`
}

// RabbitMQConfig is optional; an empty URL routes events to the log backend.
type RabbitMQConfig struct {
	URL          string `env:"RABBITMQ_URL" env-default:""`
	QueueDurable bool   `env:"RABBITMQ_QUEUE_DURABLE" env-default:"true"`
}

// DSN builds the MySQL data source name used by gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

// MigrateURL is the DSN in the form golang-migrate expects.
func (d DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		url.QueryEscape(d.Username), url.QueryEscape(d.Password), d.Host, d.Port, d.Name)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// LoadConfig loads configuration from environment variables, reading .env first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unusable settings everywhere and development defaults in production.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, test, production, got %q", c.Environment))
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive"))
	} else if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be shorter than JWT_REFRESH_TTL"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}

	if c.IsProduction() {
		if c.JWT.AccessSecret == defaultJWTSecret || c.JWT.RefreshSecret == defaultJWTRefreshSecret {
			errs = append(errs, errors.New("default JWT secrets are not allowed in production"))
		}
		if len(c.JWT.AccessSecret) < minProductionSecretLen || len(c.JWT.RefreshSecret) < minProductionSecretLen {
			errs = append(errs, fmt.Errorf("JWT secrets must be at least %d bytes in production", minProductionSecretLen))
		}
		if c.JWT.AccessSecret == c.JWT.RefreshSecret {
			errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
		}
		if c.Origin == "" || c.Origin == "*" {
			errs = append(errs, errors.New("ORIGIN must name a concrete origin in production"))
		}
		if c.Database.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required in production"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
