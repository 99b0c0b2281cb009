package pyroscope

import "errors"

const DEFAULT_APPLICATION_NAME = "coastline"

type Config struct {
	ApplicationName      string `koanf:"application_name"`
	ServerAddress        string `koanf:"server_address"`
	ApiKey               string `koanf:"api_key"`
	MutexProfileFraction int    `koanf:"mutex_profile_fraction"`
	BlockProfileRate     int    `koanf:"block_profile_rate"`
}

// Enabled is true when a server address is configured.
func (cfg *Config) Enabled() bool {
	return cfg.ServerAddress != ""
}

func (cfg *Config) Validate() error {
	if cfg.Enabled() && cfg.ApplicationName == "" {
		return errors.New("pyroscope application_name is empty")
	}
	if cfg.MutexProfileFraction < 0 || cfg.BlockProfileRate < 0 {
		return errors.New("pyroscope profile rates should not be negative")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		ApplicationName: DEFAULT_APPLICATION_NAME,
	}
}
