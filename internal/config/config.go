package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/garrettladley/whoopsync/internal/apperr"
	appenv "github.com/garrettladley/whoopsync/internal/env"
)

const (
	DefaultAuthURL    = "https://api.prod.whoop.com/oauth/oauth2/auth"
	DefaultTokenURL   = "https://api.prod.whoop.com/oauth/oauth2/token" //nolint:gosec // not credentials, just endpoint URL
	DefaultAPIBaseURL = "https://api.prod.whoop.com/developer/v1"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
)

type Config struct {
	Port            string             `env:"PORT" envDefault:"8080"`
	Env             appenv.Environment `env:"ENV" envDefault:"development"`
	AppSecret       string             `env:"APP_SECRET"`
	CronSecret      string             `env:"CRON_SECRET"`
	// TrustUserHeader lets internal callers name the user with X-Whoop-User-ID.
	TrustUserHeader bool               `env:"TRUST_USER_HEADER" envDefault:"false"`
	Whoop           Whoop              `envPrefix:"WHOOP_"`
	Database        Database           `envPrefix:"DATABASE_"`
	Redis           Redis              `envPrefix:"REDIS_"`
	RateLimit       RateLimit          `envPrefix:"RATE_LIMIT_"`
	Sync            Sync               `envPrefix:"SYNC_"`
	Kafka           Kafka              `envPrefix:"KAFKA_"`
}

type Whoop struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
	AuthURL      string `env:"AUTH_URL" envDefault:"https://api.prod.whoop.com/oauth/oauth2/auth"`
	TokenURL     string `env:"TOKEN_URL" envDefault:"https://api.prod.whoop.com/oauth/oauth2/token"`
	APIBaseURL   string `env:"API_BASE_URL" envDefault:"https://api.prod.whoop.com/developer/v1"`
}

type Database struct {
	Driver Driver `env:"DRIVER" envDefault:"postgres"`
	URL    string `env:"URL"`
}

// Redis is optional; an empty URL selects the in-memory backend.
type Redis struct {
	URL string `env:"URL"`
}

type RateLimit struct {
	Limit float64 `env:"LIMIT" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

type Sync struct {
	Interval    time.Duration `env:"INTERVAL" envDefault:"0s"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"4"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"whoop.records"`
}

// Read parses the environment and validates the result.
// Returns an *apperr.Error of kind KindConfiguration when required settings are missing.
func Read() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadDatabase parses only the DATABASE_ settings, for tools that never
// talk to WHOOP. A sqlite driver without a URL falls back to defaultPath.
func ReadDatabase(defaultPath string) (Database, error) {
	db, err := env.ParseAsWithOptions[Database](env.Options{Prefix: "DATABASE_"})
	if err != nil {
		return Database{}, fmt.Errorf("parsing environment: %w", err)
	}
	if db.Driver == DriverSQLite && db.URL == "" {
		db.URL = defaultPath
	}
	return db, nil
}

func (c Config) Validate() error {
	var missing []string
	require := func(name string, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require("WHOOP_CLIENT_ID", c.Whoop.ClientID)
	require("WHOOP_CLIENT_SECRET", c.Whoop.ClientSecret)
	require("WHOOP_REDIRECT_URI", c.Whoop.RedirectURI)
	require("WHOOP_AUTH_URL", c.Whoop.AuthURL)
	require("WHOOP_TOKEN_URL", c.Whoop.TokenURL)
	require("WHOOP_API_BASE_URL", c.Whoop.APIBaseURL)
	require("APP_SECRET", c.AppSecret)
	require("CRON_SECRET", c.CronSecret)

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		require("DATABASE_URL", c.Database.URL)
	case DriverMemory:
	default:
		return apperr.Configuration("config", fmt.Sprintf("unknown DATABASE_DRIVER %q (valid: postgres, sqlite, memory)", c.Database.Driver))
	}

	if !c.Env.Valid() {
		return apperr.Configuration("config", fmt.Sprintf("unknown ENV %q (valid: development, production)", c.Env))
	}

	if c.Sync.Concurrency < 1 {
		return apperr.Configuration("config", "SYNC_CONCURRENCY must be at least 1")
	}

	if len(missing) > 0 {
		return apperr.Configuration("config", "missing required settings: "+strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 }
