package overlay

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	DEFAULT_STROKE_COLOR                = "#3498db"
	DEFAULT_STROKE_WEIGHT               = 2
	DEFAULT_FILL_OPACITY                = 0.1
	DEFAULT_LOCATE_ZOOM                 = 13
	DEFAULT_GEOLOCATION_TIMEOUT_SECONDS = 10
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Config struct {
	// Drop results of a search that was overtaken by a newer search in the
	// same session while its lookup was in flight.
	DiscardStaleSearches bool `koanf:"discard_stale_searches" json:"discard_stale_searches"`

	StrokeColor  string  `koanf:"stroke_color" json:"stroke_color"`
	StrokeWeight int     `koanf:"stroke_weight" json:"stroke_weight"`
	FillOpacity  float64 `koanf:"fill_opacity" json:"fill_opacity"`

	LocateZoom int `koanf:"locate_zoom" json:"locate_zoom"`

	GeolocationHighAccuracy   bool `koanf:"geolocation_high_accuracy" json:"geolocation_high_accuracy"`
	GeolocationTimeoutSeconds int  `koanf:"geolocation_timeout_seconds" json:"geolocation_timeout_seconds"`
	GeolocationMaxAgeSeconds  int  `koanf:"geolocation_max_age_seconds" json:"geolocation_max_age_seconds"`
}

func (cfg *Config) Style() Style {
	return Style{
		Color:       cfg.StrokeColor,
		Weight:      cfg.StrokeWeight,
		FillOpacity: cfg.FillOpacity,
	}
}

func (cfg *Config) GeolocationOptions() GeolocationOptions {
	return GeolocationOptions{
		EnableHighAccuracy: cfg.GeolocationHighAccuracy,
		Timeout:            time.Second * time.Duration(cfg.GeolocationTimeoutSeconds),
		MaximumAge:         time.Second * time.Duration(cfg.GeolocationMaxAgeSeconds),
	}
}

func (cfg *Config) Validate() error {
	if !colorRe.MatchString(cfg.StrokeColor) {
		return fmt.Errorf("overlay stroke_color should look like '#3498db', not '%s'", cfg.StrokeColor)
	}
	if cfg.StrokeWeight < 1 {
		return fmt.Errorf("overlay stroke_weight should be at least 1, not %d", cfg.StrokeWeight)
	}
	if cfg.FillOpacity < 0 || cfg.FillOpacity > 1 {
		return fmt.Errorf("overlay fill_opacity should be within [0, 1], not %0.3f", cfg.FillOpacity)
	}
	if cfg.LocateZoom < 0 || cfg.LocateZoom > 19 {
		return fmt.Errorf("overlay locate_zoom should be within [0, 19], not %d", cfg.LocateZoom)
	}
	if cfg.GeolocationTimeoutSeconds < 0 || cfg.GeolocationMaxAgeSeconds < 0 {
		return errors.New("overlay geolocation timeouts should not be negative")
	}
	return nil
}

func GetDefaultConfig() Config {
	return Config{
		DiscardStaleSearches:      true,
		StrokeColor:               DEFAULT_STROKE_COLOR,
		StrokeWeight:              DEFAULT_STROKE_WEIGHT,
		FillOpacity:               DEFAULT_FILL_OPACITY,
		LocateZoom:                DEFAULT_LOCATE_ZOOM,
		GeolocationHighAccuracy:   true,
		GeolocationTimeoutSeconds: DEFAULT_GEOLOCATION_TIMEOUT_SECONDS,
		GeolocationMaxAgeSeconds:  0,
	}
}
