package overlay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/geo"
	"github.com/UnownHash/Coastline/names"
	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/stats_collector"
)

// OverlayRecord is a rendered coastline that Clear will remove.
type OverlayRecord struct {
	LayerID     LayerID        `json:"layer_id"`
	DisplayName string         `json:"display_name"`
	Query       string         `json:"query"`
	Category    names.Category `json:"category"`
	OSMRef      string         `json:"osm_ref,omitempty"`
	PlaceName   string         `json:"place_name"`
	AreaM2      float64        `json:"area_m2"`
	Label       orb.Point      `json:"label"`
	CreatedAt   time.Time      `json:"created_at"`
}

type SearchResult struct {
	Overlay      OverlayRecord `json:"overlay"`
	MainlandOnly bool          `json:"mainland_only"`
}

type ControllerConfig struct {
	Logger         *logrus.Logger
	Renderer       Renderer
	Lookup         PlaceLookup
	Recorder       SearchRecorder
	StatsCollector stats_collector.StatsCollector
	SessionId      string
	Config         Config
}

// Controller owns the overlays and the center marker of one map.
type Controller struct {
	logger         *logrus.Logger
	renderer       Renderer
	lookup         PlaceLookup
	recorder       SearchRecorder
	statsCollector stats_collector.StatsCollector
	sessionId      string

	mutex          sync.Mutex
	config         Config
	state          State
	status         Status
	generation     uint64
	clearedAt      uint64
	overlays       []OverlayRecord
	overlayIndex   *geo.FenceRTree[LayerID]
	centerMarker   LayerID
	locationMarker LayerID
}

func (ctl *Controller) State() State {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	return ctl.state
}

func (ctl *Controller) Status() Status {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	return ctl.status
}

func (ctl *Controller) Config() Config {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	return ctl.config
}

// SetConfig applies to searches started afterwards.
func (ctl *Controller) SetConfig(config Config) {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	ctl.config = config
}

// Overlays returns a copy of the rendered overlays, oldest first.
func (ctl *Controller) Overlays() []OverlayRecord {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()
	return append([]OverlayRecord(nil), ctl.overlays...)
}

// OverlaysAt returns the overlays whose rendered shape contains the point.
func (ctl *Controller) OverlaysAt(lat, lon float64) []OverlayRecord {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()

	matches := ctl.overlayIndex.GetMatches(lat, lon)
	if len(matches) == 0 {
		return nil
	}

	wanted := make(map[LayerID]struct{}, len(matches))
	for _, id := range matches {
		wanted[id] = struct{}{}
	}

	var records []OverlayRecord
	for _, record := range ctl.overlays {
		if _, ok := wanted[record.LayerID]; ok {
			records = append(records, record)
		}
	}
	return records
}

func (ctl *Controller) setStatus(state State, status Status) {
	ctl.state = state
	ctl.status = status
}

func (ctl *Controller) recordSearch(ctx context.Context, search *db_store.Search) {
	search.SessionId = ctl.sessionId
	search.CreatedAt = time.Now().Unix()
	if err := ctl.recorder.RecordSearch(ctx, search); err != nil {
		ctl.logger.Warnf("session %s: failed to record search for '%s': %v", ctl.sessionId, search.DisplayName, err)
	}
}

type searchView struct {
	center orb.Point
	zoom   int
}

// Search looks up 'displayName' and draws its coastline centered on the
// current view.
func (ctl *Controller) Search(ctx context.Context, displayName string) (*SearchResult, error) {
	return ctl.search(ctx, displayName, nil)
}

// SearchAt moves the view to 'center' and 'zoom' and draws the coastline
// there. The view is set and read under one lock, so concurrent searches
// each keep their own center.
func (ctl *Controller) SearchAt(ctx context.Context, displayName string, center orb.Point, zoom int) (*SearchResult, error) {
	return ctl.search(ctx, displayName, &searchView{center: center, zoom: zoom})
}

func (ctl *Controller) search(ctx context.Context, displayName string, view *searchView) (*SearchResult, error) {
	if strings.TrimSpace(displayName) == "" {
		ctl.mutex.Lock()
		ctl.setStatus(StateIdle, invalidInputStatus())
		ctl.mutex.Unlock()
		ctl.statsCollector.AddSearchOutcome(string(StatusInvalidInput))
		return nil, ErrInvalidInput
	}

	place := names.Translate(displayName)
	query := place.Query()

	ctl.statsCollector.AddSearch(string(place.Category))

	ctl.mutex.Lock()
	ctl.generation++
	generation := ctl.generation
	ctl.setStatus(StateSearching, loadingStatus())

	var target orb.Point
	if view != nil {
		ctl.renderer.SetView(view.center, view.zoom)
		target = view.center
	} else {
		target = ctl.renderer.Center()
	}
	if ctl.centerMarker != 0 {
		ctl.renderer.Remove(ctl.centerMarker)
	}
	ctl.centerMarker = ctl.renderer.AddMarker(target, MarkerCenter, CENTER_MARKER_POPUP)

	discardStale := ctl.config.DiscardStaleSearches
	style := ctl.config.Style()
	ctl.mutex.Unlock()

	ctl.logger.Debugf("session %s: searching '%s' as '%s' (%s), center %f,%f", ctl.sessionId, displayName, query, place.Category, target.Lat(), target.Lon())

	found, err := ctl.lookup.Lookup(ctx, query)
	if err == nil && !geo.GeometrySupported(found.Geometry) {
		err = fmt.Errorf("'%s' has no outline (%T): %w", query, found.Geometry, nominatim.ErrNotFound)
	}

	search := &db_store.Search{
		DisplayName: displayName,
		Query:       query,
		Category:    string(place.Category),
	}

	ctl.mutex.Lock()

	// a Clear always wins over searches started before it
	if generation <= ctl.clearedAt || (discardStale && generation != ctl.generation) {
		ctl.mutex.Unlock()
		ctl.logger.Debugf("session %s: dropping result for '%s': superseded", ctl.sessionId, query)
		ctl.statsCollector.AddSearchOutcome("superseded")
		return nil, ErrSuperseded
	}

	if err != nil {
		status := searchFailureStatus(err)
		ctl.setStatus(StateFailed, status)
		ctl.mutex.Unlock()

		ctl.logger.Infof("session %s: search for '%s' failed: %v", ctl.sessionId, query, err)
		ctl.statsCollector.AddSearchOutcome(string(status.Kind))

		search.Status = string(status.Kind)
		search.Error = null.StringFrom(err.Error())
		ctl.recordSearch(ctx, search)
		return nil, err
	}

	geometry := found.Geometry
	if place.MainlandOnly() {
		geometry = geo.ExtractLargestPolygon(geometry)
	}
	// area before moving: it changes with latitude
	areaM2 := geo.GeodesicAreaM2(geometry)
	geometry = geo.Translate(geometry, target)

	layerId := ctl.renderer.AddGeometry(geometry, style, displayName)

	record := OverlayRecord{
		LayerID:     layerId,
		DisplayName: displayName,
		Query:       query,
		Category:    place.Category,
		OSMRef:      found.OSMRef(),
		PlaceName:   found.DisplayName,
		AreaM2:      areaM2,
		Label:       geo.LabelPoint(geometry),
		CreatedAt:   time.Now(),
	}
	ctl.overlays = append(ctl.overlays, record)
	if err := ctl.overlayIndex.InsertGeometry(geometry, layerId); err != nil {
		ctl.logger.Debugf("session %s: overlay %d for '%s' is not indexed: %v", ctl.sessionId, layerId, query, err)
	}

	ctl.setStatus(StateRendered, renderedStatus(displayName, place.MainlandOnly()))
	ctl.mutex.Unlock()

	ctl.logger.Infof("session %s: rendered '%s' (%s, %0.0f km²)", ctl.sessionId, found.DisplayName, record.OSMRef, record.AreaM2/1e6)
	ctl.statsCollector.AddSearchOutcome(string(StatusRendered))

	search.Status = string(StatusRendered)
	search.OSMId = null.NewString(record.OSMRef, record.OSMRef != "")
	search.AreaM2 = null.FloatFrom(record.AreaM2)
	ctl.recordSearch(ctx, search)

	return &SearchResult{
		Overlay:      record,
		MainlandOnly: place.MainlandOnly(),
	}, nil
}

// Clear removes every overlay and the center marker. Searches still in
// flight are dropped. The current location marker is left alone.
func (ctl *Controller) Clear() {
	ctl.mutex.Lock()
	defer ctl.mutex.Unlock()

	ctl.generation++
	ctl.clearedAt = ctl.generation

	for _, record := range ctl.overlays {
		ctl.renderer.Remove(record.LayerID)
	}
	ctl.overlays = nil
	ctl.overlayIndex.Reset()

	if ctl.centerMarker != 0 {
		ctl.renderer.Remove(ctl.centerMarker)
		ctl.centerMarker = 0
	}

	ctl.setStatus(StateIdle, clearedStatus())
}

// Locate moves the view to the position reported by 'geolocator'.
func (ctl *Controller) Locate(ctx context.Context, geolocator Geolocator) (orb.Point, error) {
	ctl.mutex.Lock()
	options := ctl.config.GeolocationOptions()
	zoom := ctl.config.LocateZoom
	ctl.status = locatingStatus()
	ctl.mutex.Unlock()

	if geolocator == nil {
		return ctl.locateFailed(ErrGeolocationUnsupported)
	}

	if options.Timeout > 0 {
		var cancelFn context.CancelFunc
		ctx, cancelFn = context.WithTimeout(ctx, options.Timeout)
		defer cancelFn()
	}

	position, err := geolocator.CurrentPosition(ctx, options)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrGeolocationTimeout
		}
		return ctl.locateFailed(err)
	}

	ctl.mutex.Lock()
	if ctl.locationMarker != 0 {
		ctl.renderer.Remove(ctl.locationMarker)
	}
	ctl.locationMarker = ctl.renderer.AddMarker(position, MarkerLocation, LOCATION_MARKER_POPUP)
	ctl.renderer.SetView(position, zoom)
	ctl.status = locatedStatus()
	ctl.mutex.Unlock()

	ctl.statsCollector.AddLocate("located")

	return position, nil
}

func (ctl *Controller) locateFailed(err error) (orb.Point, error) {
	status := locateFailureStatus(err)

	ctl.mutex.Lock()
	ctl.status = status
	ctl.mutex.Unlock()

	ctl.logger.Infof("session %s: geolocation failed: %v", ctl.sessionId, err)
	ctl.statsCollector.AddLocate(string(status.Kind))

	return orb.Point{}, err
}

func NewController(config ControllerConfig) (*Controller, error) {
	if config.Logger == nil {
		return nil, errors.New("No logger given")
	}
	if config.Renderer == nil {
		return nil, errors.New("No renderer given")
	}
	if config.Lookup == nil {
		return nil, errors.New("No place lookup given")
	}
	if err := config.Config.Validate(); err != nil {
		return nil, err
	}

	recorder := config.Recorder
	if recorder == nil {
		recorder = db_store.NewNoopHistoryStore()
	}

	statsCollector := config.StatsCollector
	if statsCollector == nil {
		statsCollector = stats_collector.NewNoopStatsCollector()
	}

	return &Controller{
		logger:         config.Logger,
		renderer:       config.Renderer,
		lookup:         config.Lookup,
		recorder:       recorder,
		statsCollector: statsCollector,
		sessionId:      config.SessionId,
		config:         config.Config,
		state:          StateIdle,
		status:         initialStatus(),
		overlayIndex:   geo.NewFenceRTree[LayerID](),
	}, nil
}
