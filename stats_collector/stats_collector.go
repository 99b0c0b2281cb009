package stats_collector

import (
	"github.com/gin-gonic/gin"
)

type StatsCollector interface {
	Name() string
	RegisterGinEngine(*gin.Engine)

	// category is island, country or unknown.
	AddSearch(category string)
	// outcome is rendered, not_found, lookup_failed, invalid_input or superseded.
	AddSearchOutcome(outcome string)
	// outcome is located or the geolocation error kind.
	AddLocate(outcome string)
	SetActiveSessions(num int)
}

type Config interface {
	GetPrometheusConfig() PrometheusConfig
}

func GetStatsCollector(cfg Config) StatsCollector {
	promConfig := cfg.GetPrometheusConfig()
	if !promConfig.Enabled {
		return NewNoopStatsCollector()
	}
	return NewPrometheusCollector(promConfig)
}
