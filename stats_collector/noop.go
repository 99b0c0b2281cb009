package stats_collector

import "github.com/gin-gonic/gin"

var _ StatsCollector = (*noopCollector)(nil)

type noopCollector struct {
}

func (col *noopCollector) Name() string                    { return "no-op" }
func (col *noopCollector) RegisterGinEngine(*gin.Engine)   {}
func (col *noopCollector) AddSearch(category string)       {}
func (col *noopCollector) AddSearchOutcome(outcome string) {}
func (col *noopCollector) AddLocate(outcome string)        {}
func (col *noopCollector) SetActiveSessions(num int)       {}

func NewNoopStatsCollector() StatsCollector {
	return &noopCollector{}
}
