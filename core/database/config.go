package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds database connection settings.
// URL takes precedence over the individual parts when set.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// MaxIdleConnections defaults to MaxConnections when zero.
	MaxIdleConnections int    `yaml:"max_idle_connections" envconfig:"DB_MAX_IDLE_CONNECTIONS"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_seconds" envconfig:"DB_CONN_MAX_LIFETIME_SECONDS"`
	MigrationsDir      string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

const (
	defaultMaxConnections  = 10
	defaultConnMaxLifetime = 3600
	defaultMigrationsDir   = "migrations"
)

// Normalize fills pool defaults and validates that a connection target exists.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("database: DATABASE_URL or DB_HOST is required")
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}
	if c.MaxIdleConnections <= 0 || c.MaxIdleConnections > c.MaxConnections {
		c.MaxIdleConnections = c.MaxConnections
	}
	if c.ConnMaxLifetimeSec <= 0 {
		c.ConnMaxLifetimeSec = defaultConnMaxLifetime
	}
	if strings.TrimSpace(c.MigrationsDir) == "" {
		c.MigrationsDir = defaultMigrationsDir
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	return nil
}

// DSN returns a postgres:// URL usable by both lib/pq and golang-migrate.
func (c Config) DSN() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host,
		Path:   "/" + c.Name,
	}
	if c.Port != "" {
		u.Host = c.Host + ":" + c.Port
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Target describes the connection target for logs without credentials.
func (c Config) Target() (host, port, name string) {
	if raw := strings.TrimSpace(c.URL); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			return u.Hostname(), u.Port(), strings.TrimPrefix(u.Path, "/")
		}
		return "", "", ""
	}
	return c.Host, c.Port, c.Name
}
