// Package config holds the application configuration layered over the core one.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/uyizlang/uyizlangbot/core/config"
	coredatabase "github.com/uyizlang/uyizlangbot/core/database"
)

const (
	defaultCacheTTLSeconds = 60
	defaultKafkaTopic      = "listing.created"
)

// ListingsConfig tunes the listing query path.
type ListingsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" envconfig:"LISTINGS_CACHE_TTL_SECONDS"`
}

// EventsConfig configures domain event publishing. No brokers disables it.
type EventsConfig struct {
	Brokers  []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic    string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`
	Username string   `yaml:"username" envconfig:"KAFKA_USERNAME"`
	Password string   `yaml:"password" envconfig:"KAFKA_PASSWORD"`
	TLS      bool     `yaml:"tls" envconfig:"KAFKA_TLS"`
}

// Enabled reports whether at least one broker is configured.
func (e EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Listings ListingsConfig      `yaml:"listings"`
	Events   EventsConfig        `yaml:"events"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads YAML from path, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}

	if c.Listings.CacheTTLSeconds < 0 {
		return fmt.Errorf("listings.cache_ttl_seconds must be >= 0")
	}
	if c.Listings.CacheTTLSeconds == 0 {
		c.Listings.CacheTTLSeconds = defaultCacheTTLSeconds
	}

	brokers := c.Events.Brokers[:0]
	for _, b := range c.Events.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Events.Brokers = brokers
	if strings.TrimSpace(c.Events.Topic) == "" {
		c.Events.Topic = defaultKafkaTopic
	}
	return nil
}
