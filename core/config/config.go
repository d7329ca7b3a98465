package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	defaultRateLimitRequests = 10
	defaultRateLimitWindow   = 60
)

// RateLimitConfig configures the per-user sliding window limiter.
type RateLimitConfig struct {
	Requests      int `yaml:"requests" envconfig:"RATE_LIMIT_REQUESTS"`
	WindowSeconds int `yaml:"window_seconds" envconfig:"RATE_LIMIT_WINDOW_SECONDS"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads the core configuration from a YAML file and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadInto decodes the YAML file at path into dst and then applies
// environment overrides. A missing file is not an error: the bot may be
// configured through the environment alone. Variables from a local .env
// file never override ones already set in the process environment.
func LoadInto(path string, dst any) error {
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, dst); err != nil {
				return fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Normalize validates the required fields and fills defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	switch {
	case cfg.Telegram.Token == "":
		return errors.New("telegram token is required (BOT_TOKEN)")
	case cfg.Telegram.AdminID == 0:
		return errors.New("telegram admin id is required (ADMIN_ID)")
	}
	if err := normalizeRunMode(cfg); err != nil {
		return err
	}
	return normalizeRateLimit(&cfg.RateLimit)
}

// normalizeRunMode lower-cases the run mode, maps "" and "polling" to
// longpoll and checks the settings the chosen mode needs.
func normalizeRunMode(cfg *Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if mode == "" || mode == "polling" {
		mode = RunModeLongpoll
	}

	switch mode {
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return errors.New("telegram.longpoll_timeout_seconds must be >= 0")
		}
	case RunModeWebhook:
		wh := cfg.Webhook
		var missing string
		switch {
		case strings.TrimSpace(wh.URL) == "":
			missing = "webhook.url is required"
		case strings.TrimSpace(wh.Listen) == "":
			missing = "webhook.listen is required"
		case wh.Port <= 0:
			missing = "webhook.port must be > 0"
		}
		if missing != "" {
			return fmt.Errorf("%s when telegram.run_mode is 'webhook'", missing)
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = mode
	return nil
}

func normalizeRateLimit(rl *RateLimitConfig) error {
	if rl.Requests < 0 || rl.WindowSeconds < 0 {
		return errors.New("rate_limit values must be >= 0")
	}
	if rl.Requests == 0 {
		rl.Requests = defaultRateLimitRequests
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultRateLimitWindow
	}
	return nil
}
