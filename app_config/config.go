package app_config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/httpserver"
	"github.com/UnownHash/Coastline/logging"
	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/pyroscope"
	"github.com/UnownHash/Coastline/sessions"
	"github.com/UnownHash/Coastline/stats_collector"
)

type Config struct {
	Logging logging.Config    `koanf:"logging"`
	HTTP    httpserver.Config `koanf:"http"`

	Nominatim nominatim.Config `koanf:"nominatim"`
	Overlay   overlay.Config   `koanf:"overlay"`
	Sessions  sessions.Config  `koanf:"sessions"`

	Prometheus stats_collector.PrometheusConfig `koanf:"prometheus"`
	Pyroscope  pyroscope.Config                 `koanf:"pyroscope"`

	// optional. search history is not kept without it.
	HistoryDb *db_store.DBConfig `koanf:"history_db"`
}

func (cfg *Config) CreateLogger(rotate bool) *logrus.Logger {
	return cfg.Logging.CreateLogger(rotate, true)
}

func (cfg *Config) GetPrometheusConfig() stats_collector.PrometheusConfig {
	return cfg.Prometheus
}

func (cfg *Config) Validate() error {
	if err := cfg.Logging.Validate(); err != nil {
		return err
	}

	if err := cfg.HTTP.Validate(); err != nil {
		return err
	}

	if err := cfg.Nominatim.Validate(); err != nil {
		return err
	}

	if err := cfg.Overlay.Validate(); err != nil {
		return err
	}

	if err := cfg.Sessions.Validate(); err != nil {
		return err
	}

	if err := cfg.Prometheus.Validate(); err != nil {
		return err
	}

	if err := cfg.Pyroscope.Validate(); err != nil {
		return err
	}

	if cfg.HistoryDb != nil {
		if err := cfg.HistoryDb.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func GetDefaultConfig() Config {
	return Config{
		Logging: logging.GetDefaultConfig(),

		HTTP: httpserver.Config{
			Addr:                "127.0.0.1:9050",
			ShutdownWaitSeconds: httpserver.DEFAULT_SHUTDOWN_WAIT_SECONDS,
		},

		Nominatim: nominatim.GetDefaultConfig(),
		Overlay:   overlay.GetDefaultConfig(),
		Sessions:  sessions.GetDefaultConfig(),

		Prometheus: stats_collector.GetDefaultPrometheusConfig(),
		Pyroscope:  pyroscope.GetDefaultConfig(),

		/*
			HistoryDb: &db_store.DBConfig{
				Addr:           "127.0.0.1:3306",
				Db:             "coastline",
				MigrationsPath: "./db_store/sql",
			},
		*/
	}
}

// LoadConfig loads 'filename' over 'defaultConfig'. An empty filename
// means defaults only.
func LoadConfig(filename string, defaultConfig Config) (*Config, error) {
	k := koanf.New(".")
	err := k.Load(structs.Provider(defaultConfig, "koanf"), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default config: %w", err)
	}

	if filename != "" {
		if _, err := os.Stat(filename); err != nil {
			return nil, fmt.Errorf("couldn't open '%s': %w", filename, err)
		}

		err = k.Load(file.Provider(filename), toml.Parser())
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
