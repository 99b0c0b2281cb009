package sessions

import (
	"errors"
	"time"
)

const (
	DEFAULT_IDLE_TIMEOUT_MINUTES   = 60
	DEFAULT_MAX_SESSIONS           = 10000
	DEFAULT_SWEEP_INTERVAL_SECONDS = 60
	DEFAULT_COOKIE_NAME            = "coastline_session"
)

type Config struct {
	IdleTimeoutMinutes   int    `koanf:"idle_timeout_minutes" json:"idle_timeout_minutes"`
	MaxSessions          int    `koanf:"max_sessions" json:"max_sessions"`
	SweepIntervalSeconds int    `koanf:"sweep_interval_seconds" json:"sweep_interval_seconds"`
	CookieName           string `koanf:"cookie_name" json:"cookie_name"`
}

func (cfg *Config) IdleTimeout() time.Duration {
	return time.Minute * time.Duration(cfg.IdleTimeoutMinutes)
}

func (cfg *Config) SweepInterval() time.Duration {
	return time.Second * time.Duration(cfg.SweepIntervalSeconds)
}

func (cfg *Config) Validate() error {
	if cfg.IdleTimeoutMinutes < 1 {
		return errors.New("sessions idle_timeout_minutes should be at least 1")
	}
	if cfg.MaxSessions < 1 {
		return errors.New("sessions max_sessions should be at least 1")
	}
	if cfg.SweepIntervalSeconds < 1 {
		return errors.New("sessions sweep_interval_seconds should be at least 1")
	}
	if cfg.CookieName == "" {
		return errors.New("sessions cookie_name is empty")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		IdleTimeoutMinutes:   DEFAULT_IDLE_TIMEOUT_MINUTES,
		MaxSessions:          DEFAULT_MAX_SESSIONS,
		SweepIntervalSeconds: DEFAULT_SWEEP_INTERVAL_SECONDS,
		CookieName:           DEFAULT_COOKIE_NAME,
	}
}
