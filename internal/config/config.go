package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultDBTimeout            = 10 * time.Second
	defaultSessionTTL           = 24 * 7 * time.Hour
	defaultLoginRateLimitPerMin = 15
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// browser origins allowed by CORS, besides localhost
	AllowedOrigins []string `toml:"allowed_origins"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string   `toml:"postgres_host"`
	PostgresPort   string   `toml:"postgres_port"`
	PostgresDBName string   `toml:"postgres_db_name"`
	PostgresUser   string   `toml:"postgres_user"`
	DBTimeout      Duration `toml:"db_timeout"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// auth
	SessionTTL                  Duration `toml:"session_ttl"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	Users                       []User   `toml:"users"`
}

// User is an account allowed to log in. The user id is what the workout
// store scopes every row by.
type User struct {
	ID           string `toml:"id"`
	Username     string `toml:"username"`
	PasswordHash string `toml:"password_hash"`
}

// Duration lets TOML values like "10s" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration [%s]: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config for env,
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}
	return FromToml(env, &t)
}

// Parse is like Load but reads the TOML document from a string.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return FromToml(env, &t)
}

func FromToml(env string, t *Toml) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBTimeout.Duration <= 0 {
		c.DBTimeout.Duration = defaultDBTimeout
	}
	if c.SessionTTL.Duration <= 0 {
		c.SessionTTL.Duration = defaultSessionTTL
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = defaultLoginRateLimitPerMin
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 {
		return errors.New("port must be set")
	}
	seenIDs := map[string]bool{}
	seenUsernames := map[string]bool{}
	for i, u := range c.Users {
		if u.ID == "" || u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("user #%d: id, username and password_hash are required", i)
		}
		if seenIDs[u.ID] {
			return fmt.Errorf("duplicate user id: %s", u.ID)
		}
		if seenUsernames[u.Username] {
			return fmt.Errorf("duplicate username: %s", u.Username)
		}
		seenIDs[u.ID] = true
		seenUsernames[u.Username] = true
	}
	return nil
}
