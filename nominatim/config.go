package nominatim

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	DEFAULT_URL             = "https://nominatim.openstreetmap.org"
	DEFAULT_USER_AGENT      = "CoastlineViewer/1.0"
	DEFAULT_MIN_INTERVAL_MS = 1000
	DEFAULT_TIMEOUT_SECONDS = 30
)

type Config struct {
	Url            string `koanf:"url" json:"url"`
	UserAgent      string `koanf:"user_agent" json:"user_agent"`
	AcceptLanguage string `koanf:"accept_language" json:"accept_language"`
	// Nominatim's usage policy asks for at most 1 request per second.
	MinIntervalMs  int `koanf:"min_interval_ms" json:"min_interval_ms"`
	TimeoutSeconds int `koanf:"timeout_seconds" json:"timeout_seconds"`
}

func (cfg *Config) MinInterval() time.Duration {
	return time.Millisecond * time.Duration(cfg.MinIntervalMs)
}

func (cfg *Config) Timeout() time.Duration {
	return time.Second * time.Duration(cfg.TimeoutSeconds)
}

func (cfg *Config) Validate() error {
	if cfg.Url == "" {
		return errors.New("No nominatim url configured")
	}
	if _, err := url.Parse(cfg.Url); err != nil {
		return fmt.Errorf("'nominatim.url' looks malformed: %w", err)
	}
	if cfg.UserAgent == "" {
		return errors.New("nominatim requires a user_agent to identify the client")
	}
	if cfg.MinIntervalMs < 0 {
		return fmt.Errorf("nominatim min_interval_ms should be >= 0, not %d", cfg.MinIntervalMs)
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("nominatim timeout_seconds should be >= 0, not %d", cfg.TimeoutSeconds)
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Url:            DEFAULT_URL,
		UserAgent:      DEFAULT_USER_AGENT,
		MinIntervalMs:  DEFAULT_MIN_INTERVAL_MS,
		TimeoutSeconds: DEFAULT_TIMEOUT_SECONDS,
	}
}
