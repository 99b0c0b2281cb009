package overlay_test

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/sirupsen/logrus"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/geo"
	"github.com/UnownHash/Coastline/nominatim"
	"github.com/UnownHash/Coastline/overlay"
	"github.com/UnownHash/Coastline/scene"
)

var (
	square = orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}

	// a big square and a small offshore one
	islands = orb.MultiPolygon{
		{{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10}}},
		{{{0, 0}, {5, 0}, {5, 5}, {0, 5}, {0, 0}}},
	}
)

type fakeLookup struct {
	mutex   sync.Mutex
	queries []string
	results map[string]*nominatim.Place
	err     error

	// lookups for these queries block until the channel is closed
	blocked map[string]chan struct{}
	started chan string
}

func (fl *fakeLookup) Lookup(ctx context.Context, query string) (*nominatim.Place, error) {
	fl.mutex.Lock()
	fl.queries = append(fl.queries, query)
	block := fl.blocked[query]
	started := fl.started
	fl.mutex.Unlock()

	if started != nil {
		started <- query
	}
	if block != nil {
		<-block
	}

	if fl.err != nil {
		return nil, fl.err
	}
	place, ok := fl.results[query]
	if !ok {
		return nil, nominatim.ErrNotFound
	}
	return place, nil
}

func (fl *fakeLookup) Queries() []string {
	fl.mutex.Lock()
	defer fl.mutex.Unlock()
	return append([]string(nil), fl.queries...)
}

type fakeRecorder struct {
	mutex    sync.Mutex
	searches []db_store.Search
}

func (fr *fakeRecorder) RecordSearch(ctx context.Context, search *db_store.Search) error {
	fr.mutex.Lock()
	defer fr.mutex.Unlock()
	fr.searches = append(fr.searches, *search)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newPlace(name string, geometry orb.Geometry) *nominatim.Place {
	return &nominatim.Place{
		DisplayName:  name,
		OSMFeatureID: osm.RelationID(382313).FeatureID(),
		Geometry:     geometry,
	}
}

func newController(t *testing.T, lookup overlay.PlaceLookup, recorder overlay.SearchRecorder, config overlay.Config) (*overlay.Controller, *scene.Scene) {
	t.Helper()

	sc := scene.NewScene()
	ctl, err := overlay.NewController(overlay.ControllerConfig{
		Logger:    testLogger(),
		Renderer:  sc,
		Lookup:    lookup,
		Recorder:  recorder,
		SessionId: "test",
		Config:    config,
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return ctl, sc
}

func renderedGeometries(sc *scene.Scene) []orb.Geometry {
	var geometries []orb.Geometry
	for _, f := range sc.FeatureCollection().Features {
		if f.Properties["kind"] == scene.LayerKindOverlay {
			geometries = append(geometries, f.Geometry)
		}
	}
	return geometries
}

func countMarkers(sc *scene.Scene, kind overlay.MarkerKind) int {
	n := 0
	for _, f := range sc.FeatureCollection().Features {
		if f.Properties["marker"] == string(kind) {
			n++
		}
	}
	return n
}

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

func TestNewController(t *testing.T) {
	ctl, _ := newController(t, &fakeLookup{}, nil, overlay.GetDefaultConfig())

	if s := ctl.State(); s != overlay.StateIdle {
		t.Errorf("expected idle, got %s", s)
	}
	if st := ctl.Status(); st.Kind != overlay.StatusInitial || st.IsError {
		t.Errorf("unexpected initial status %+v", st)
	}

	_, err := overlay.NewController(overlay.ControllerConfig{
		Logger:   testLogger(),
		Renderer: scene.NewScene(),
	})
	if err == nil {
		t.Error("expected an error without a lookup")
	}

	config := overlay.GetDefaultConfig()
	config.StrokeColor = "blue"
	_, err = overlay.NewController(overlay.ControllerConfig{
		Logger:   testLogger(),
		Renderer: scene.NewScene(),
		Lookup:   &fakeLookup{},
		Config:   config,
	})
	if err == nil {
		t.Error("expected an error for a bad stroke color")
	}
}

func TestSearchIsland(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Honshu Japan": newPlace("Honshu, Japan", islands),
		},
	}
	ctl, sc := newController(t, lookup, nil, overlay.GetDefaultConfig())
	sc.SetView(orb.Point{100, 20}, 5)

	res, err := ctl.Search(context.Background(), "本州")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if q := lookup.Queries(); len(q) != 1 || q[0] != "Honshu Japan" {
		t.Errorf("unexpected queries %v", q)
	}
	if res.MainlandOnly {
		t.Error("islands should be shown whole")
	}
	if res.Overlay.PlaceName != "Honshu, Japan" || res.Overlay.OSMRef != "relation/382313" {
		t.Errorf("unexpected overlay record %+v", res.Overlay)
	}

	geometries := renderedGeometries(sc)
	if len(geometries) != 1 {
		t.Fatalf("expected 1 rendered overlay, got %d", len(geometries))
	}
	mp, ok := geometries[0].(orb.MultiPolygon)
	if !ok || len(mp) != 2 {
		t.Fatalf("expected the whole multipolygon, got %T", geometries[0])
	}
	if c, _ := geo.BoundingCenter(mp); !near(c, orb.Point{100, 20}) {
		t.Errorf("expected the overlay centered on the view, got %v", c)
	}

	st := ctl.Status()
	if st.Kind != overlay.StatusRendered || st.Message != "本州の海岸線を表示しました" {
		t.Errorf("unexpected status %+v", st)
	}
	if s := ctl.State(); s != overlay.StateRendered {
		t.Errorf("expected rendered, got %s", s)
	}
	if n := countMarkers(sc, overlay.MarkerCenter); n != 1 {
		t.Errorf("expected 1 center marker, got %d", n)
	}
	if n := len(ctl.Overlays()); n != 1 {
		t.Errorf("expected 1 overlay, got %d", n)
	}

	// the source geometry is left alone
	if islands[1][0][0] != (orb.Point{0, 0}) {
		t.Error("input geometry was mutated")
	}
}

func TestSearchCountryMainland(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan": newPlace("日本", islands),
		},
	}
	ctl, sc := newController(t, lookup, nil, overlay.GetDefaultConfig())

	res, err := ctl.Search(context.Background(), "日本")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !res.MainlandOnly {
		t.Error("countries should be mainland only")
	}

	geometries := renderedGeometries(sc)
	if len(geometries) != 1 {
		t.Fatalf("expected 1 rendered overlay, got %d", len(geometries))
	}
	poly, ok := geometries[0].(orb.Polygon)
	if !ok {
		t.Fatalf("expected the largest polygon only, got %T", geometries[0])
	}
	b := poly.Bound()
	if w := b.Max[0] - b.Min[0]; math.Abs(w-5) > 1e-9 {
		t.Errorf("expected the 5x5 polygon, got width %f", w)
	}
	if c, _ := geo.BoundingCenter(poly); !near(c, orb.Point{138, 36.5}) {
		t.Errorf("expected the overlay centered on the initial view, got %v", c)
	}

	if msg := ctl.Status().Message; !strings.HasSuffix(msg, "（メインランドのみ）") {
		t.Errorf("expected a mainland annotation, got %q", msg)
	}
}

func TestSearchNotFound(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan": newPlace("日本", square),
		},
	}
	recorder := &fakeRecorder{}
	ctl, sc := newController(t, lookup, recorder, overlay.GetDefaultConfig())

	if _, err := ctl.Search(context.Background(), "日本"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	_, err := ctl.Search(context.Background(), "Xanadu")
	if !errors.Is(err, nominatim.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if q := lookup.Queries(); q[len(q)-1] != "Xanadu" {
		t.Errorf("unknown names should be searched as-is, got %v", q)
	}

	if n := len(ctl.Overlays()); n != 1 {
		t.Errorf("expected the overlay list unchanged, got %d", n)
	}
	if n := countMarkers(sc, overlay.MarkerCenter); n != 1 {
		t.Errorf("expected the center marker to stay, got %d", n)
	}

	st := ctl.Status()
	if st.Kind != overlay.StatusNotFound || !st.IsError || st.Message != "エラー: 見つかりません" {
		t.Errorf("unexpected status %+v", st)
	}
	if s := ctl.State(); s != overlay.StateFailed {
		t.Errorf("expected failed, got %s", s)
	}

	if len(recorder.searches) != 2 {
		t.Fatalf("expected 2 recorded searches, got %d", len(recorder.searches))
	}
	ok, notFound := recorder.searches[0], recorder.searches[1]
	if ok.Status != string(overlay.StatusRendered) || ok.OSMId.String != "relation/382313" || !ok.AreaM2.Valid {
		t.Errorf("unexpected record %+v", ok)
	}
	if notFound.Status != string(overlay.StatusNotFound) || !notFound.Error.Valid || notFound.SessionId != "test" {
		t.Errorf("unexpected record %+v", notFound)
	}
}

func TestSearchLookupFailed(t *testing.T) {
	lookup := &fakeLookup{err: nominatim.ErrLookupFailed}
	ctl, _ := newController(t, lookup, nil, overlay.GetDefaultConfig())

	if _, err := ctl.Search(context.Background(), "日本"); !errors.Is(err, nominatim.ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	if st := ctl.Status(); st.Kind != overlay.StatusLookupFailed || st.Message != "エラー: データの取得に失敗しました" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestSearchInvalidInput(t *testing.T) {
	lookup := &fakeLookup{}
	ctl, sc := newController(t, lookup, nil, overlay.GetDefaultConfig())

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := ctl.Search(context.Background(), name); !errors.Is(err, overlay.ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if q := lookup.Queries(); len(q) != 0 {
		t.Errorf("expected no lookups, got %v", q)
	}
	if n := sc.Len(); n != 0 {
		t.Errorf("expected nothing drawn, got %d layers", n)
	}
	if st := ctl.Status(); st.Kind != overlay.StatusInvalidInput || !st.IsError {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestClear(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan":                newPlace("日本", square),
			"Okinawa Island Japan": newPlace("沖縄本島", square),
		},
	}
	ctl, sc := newController(t, lookup, nil, overlay.GetDefaultConfig())

	if _, err := ctl.Locate(context.Background(), overlay.ReportedPosition{Position: &orb.Point{139.7, 35.7}}); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	for _, name := range []string{"日本", "沖縄"} {
		if _, err := ctl.Search(context.Background(), name); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}

	if n := len(ctl.Overlays()); n != 2 {
		t.Fatalf("expected 2 overlays, got %d", n)
	}
	// the center marker is replaced, not added to
	if n := countMarkers(sc, overlay.MarkerCenter); n != 1 {
		t.Errorf("expected 1 center marker, got %d", n)
	}

	for i := 0; i < 2; i++ {
		ctl.Clear()

		if n := len(ctl.Overlays()); n != 0 {
			t.Errorf("expected no overlays after Clear, got %d", n)
		}
		if n := len(renderedGeometries(sc)); n != 0 {
			t.Errorf("expected no rendered overlays after Clear, got %d", n)
		}
		if n := countMarkers(sc, overlay.MarkerCenter); n != 0 {
			t.Errorf("expected the center marker removed, got %d", n)
		}
		if n := countMarkers(sc, overlay.MarkerLocation); n != 1 {
			t.Errorf("expected the location marker to stay, got %d", n)
		}
		if st := ctl.Status(); st.Kind != overlay.StatusCleared || st.Message != "表示をクリアしました" {
			t.Errorf("unexpected status %+v", st)
		}
		if s := ctl.State(); s != overlay.StateIdle {
			t.Errorf("expected idle, got %s", s)
		}
	}
}

func TestOverlaysAt(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan": newPlace("日本", square),
		},
	}
	ctl, _ := newController(t, lookup, nil, overlay.GetDefaultConfig())

	if _, err := ctl.Search(context.Background(), "日本"); err != nil {
		t.Fatal(err)
	}

	// the square is now centered on 36.5,138
	if records := ctl.OverlaysAt(36.5, 138); len(records) != 1 || records[0].DisplayName != "日本" {
		t.Errorf("expected the overlay at the center, got %v", records)
	}
	if records := ctl.OverlaysAt(0, 0); len(records) != 0 {
		t.Errorf("expected nothing at 0,0, got %v", records)
	}

	ctl.Clear()
	if records := ctl.OverlaysAt(36.5, 138); len(records) != 0 {
		t.Errorf("expected nothing after Clear, got %v", records)
	}
}

func runSupersededSearches(t *testing.T, discard bool) (*overlay.Controller, error) {
	t.Helper()

	release := make(chan struct{})
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan":  newPlace("日本", square),
			"France": newPlace("France", square),
		},
		blocked: map[string]chan struct{}{
			"Japan": release,
		},
		started: make(chan string, 2),
	}

	config := overlay.GetDefaultConfig()
	config.DiscardStaleSearches = discard
	ctl, _ := newController(t, lookup, nil, config)

	firstErr := make(chan error, 1)
	go func() {
		_, err := ctl.Search(context.Background(), "日本")
		firstErr <- err
	}()
	<-lookup.started

	if _, err := ctl.Search(context.Background(), "フランス"); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	<-lookup.started

	close(release)
	return ctl, <-firstErr
}

func TestSearchSuperseded(t *testing.T) {
	ctl, err := runSupersededSearches(t, true)
	if !errors.Is(err, overlay.ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}

	overlays := ctl.Overlays()
	if len(overlays) != 1 || overlays[0].DisplayName != "フランス" {
		t.Errorf("expected only the newer search rendered, got %+v", overlays)
	}
	if msg := ctl.Status().Message; !strings.HasPrefix(msg, "フランス") {
		t.Errorf("expected the newer search's status, got %q", msg)
	}
}

func TestSearchStaleKept(t *testing.T) {
	ctl, err := runSupersededSearches(t, false)
	if err != nil {
		t.Fatalf("expected the stale search to render, got %v", err)
	}
	if n := len(ctl.Overlays()); n != 2 {
		t.Errorf("expected both searches rendered, got %d", n)
	}
}

func TestClearDuringSearch(t *testing.T) {
	for _, discard := range []bool{true, false} {
		release := make(chan struct{})
		lookup := &fakeLookup{
			results: map[string]*nominatim.Place{
				"Japan": newPlace("日本", square),
			},
			blocked: map[string]chan struct{}{
				"Japan": release,
			},
			started: make(chan string, 1),
		}

		config := overlay.GetDefaultConfig()
		config.DiscardStaleSearches = discard
		ctl, sc := newController(t, lookup, nil, config)

		searchErr := make(chan error, 1)
		go func() {
			_, err := ctl.Search(context.Background(), "日本")
			searchErr <- err
		}()
		<-lookup.started

		ctl.Clear()
		close(release)

		if err := <-searchErr; !errors.Is(err, overlay.ErrSuperseded) {
			t.Errorf("discard=%t: expected ErrSuperseded, got %v", discard, err)
		}
		if n := len(ctl.Overlays()); n != 0 {
			t.Errorf("discard=%t: expected no overlays, got %d", discard, n)
		}
		if n := len(renderedGeometries(sc)); n != 0 {
			t.Errorf("discard=%t: expected nothing rendered, got %d", discard, n)
		}
		if s := ctl.State(); s != overlay.StateIdle {
			t.Errorf("discard=%t: expected idle, got %s", discard, s)
		}
		if st := ctl.Status(); st.Kind != overlay.StatusCleared {
			t.Errorf("discard=%t: unexpected status %+v", discard, st)
		}

		// searches after the Clear render as usual
		if _, err := ctl.Search(context.Background(), "日本"); err != nil {
			t.Errorf("discard=%t: search after Clear failed: %v", discard, err)
		}
	}
}

func TestSearchAtKeepsItsCenter(t *testing.T) {
	release := make(chan struct{})
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan":  newPlace("日本", square),
			"France": newPlace("France", square),
		},
		blocked: map[string]chan struct{}{
			"Japan": release,
		},
		started: make(chan string, 2),
	}

	config := overlay.GetDefaultConfig()
	config.DiscardStaleSearches = false
	ctl, sc := newController(t, lookup, nil, config)

	firstErr := make(chan error, 1)
	go func() {
		_, err := ctl.SearchAt(context.Background(), "日本", orb.Point{139, 35}, 7)
		firstErr <- err
	}()
	<-lookup.started

	res, err := ctl.SearchAt(context.Background(), "フランス", orb.Point{2, 47}, 5)
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	<-lookup.started
	close(release)
	if err := <-firstErr; err != nil {
		t.Fatalf("first search failed: %v", err)
	}

	if v := sc.View(); v.Lat != 47 || v.Lon != 2 || v.Zoom != 5 {
		t.Errorf("expected the latest search's view, got %+v", v)
	}

	overlays := ctl.Overlays()
	if len(overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(overlays))
	}
	centers := map[string]orb.Point{}
	for _, f := range sc.FeatureCollection().Features {
		if f.Properties["kind"] != scene.LayerKindOverlay {
			continue
		}
		c, _ := geo.BoundingCenter(f.Geometry)
		centers[f.Properties["popup"].(string)] = c
	}
	if c := centers["日本"]; !near(c, orb.Point{139, 35}) {
		t.Errorf("expected 日本 centered on its own request, got %v", c)
	}
	if c := centers["フランス"]; !near(c, orb.Point{2, 47}) {
		t.Errorf("expected フランス centered on its own request, got %v", c)
	}
	if res.Overlay.DisplayName != "フランス" {
		t.Errorf("unexpected result %+v", res.Overlay)
	}
}

func TestSearchWithoutOutline(t *testing.T) {
	lookup := &fakeLookup{
		results: map[string]*nominatim.Place{
			"Japan": newPlace("日本", square),
			"Nauru": newPlace("Nauru", orb.Point{166.9, -0.5}),
		},
	}
	recorder := &fakeRecorder{}
	ctl, sc := newController(t, lookup, recorder, overlay.GetDefaultConfig())

	if _, err := ctl.Search(context.Background(), "日本"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	_, err := ctl.Search(context.Background(), "Nauru")
	if !errors.Is(err, nominatim.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a point result, got %v", err)
	}
	if n := len(renderedGeometries(sc)); n != 1 {
		t.Errorf("expected only the earlier overlay drawn, got %d", n)
	}
	if st := ctl.Status(); st.Kind != overlay.StatusNotFound {
		t.Errorf("unexpected status %+v", st)
	}
	if last := recorder.searches[len(recorder.searches)-1]; last.Status != string(overlay.StatusNotFound) {
		t.Errorf("unexpected record %+v", last)
	}
}

type deadlineGeolocator struct{}

func (deadlineGeolocator) CurrentPosition(ctx context.Context, options overlay.GeolocationOptions) (orb.Point, error) {
	return orb.Point{}, context.DeadlineExceeded
}

func TestLocate(t *testing.T) {
	ctl, sc := newController(t, &fakeLookup{}, nil, overlay.GetDefaultConfig())

	pos := orb.Point{139.7, 35.7}
	got, err := ctl.Locate(context.Background(), overlay.ReportedPosition{Position: &pos})
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != pos {
		t.Errorf("unexpected position %v", got)
	}

	if view := sc.View(); view.Center() != pos || view.Zoom != overlay.DEFAULT_LOCATE_ZOOM {
		t.Errorf("unexpected view %+v", view)
	}
	if n := countMarkers(sc, overlay.MarkerLocation); n != 1 {
		t.Errorf("expected a location marker, got %d", n)
	}
	if st := ctl.Status(); st.Kind != overlay.StatusLocated || st.IsError {
		t.Errorf("unexpected status %+v", st)
	}

	// locating again moves the marker
	if _, err := ctl.Locate(context.Background(), overlay.ReportedPosition{Position: &orb.Point{135.5, 34.7}}); err != nil {
		t.Fatal(err)
	}
	if n := countMarkers(sc, overlay.MarkerLocation); n != 1 {
		t.Errorf("expected a single location marker, got %d", n)
	}
}

func TestLocateErrors(t *testing.T) {
	tests := []struct {
		desc       string
		geolocator overlay.Geolocator
		err        error
		message    string
	}{
		{"denied", overlay.ReportedPosition{ErrorCode: 1}, overlay.ErrPermissionDenied, "位置情報の使用が許可されていません"},
		{"unavailable", overlay.ReportedPosition{ErrorCode: 2}, overlay.ErrPositionUnavailable, "位置情報が利用できません"},
		{"timeout", overlay.ReportedPosition{ErrorCode: 3}, overlay.ErrGeolocationTimeout, "位置情報の取得がタイムアウトしました"},
		{"deadline", deadlineGeolocator{}, overlay.ErrGeolocationTimeout, "位置情報の取得がタイムアウトしました"},
		{"unsupported", overlay.ReportedPosition{Unsupported: true}, overlay.ErrGeolocationUnsupported, "お使いのブラウザは位置情報に対応していません"},
		{"no geolocator", nil, overlay.ErrGeolocationUnsupported, "お使いのブラウザは位置情報に対応していません"},
		{"unknown", overlay.ReportedPosition{ErrorCode: 42}, nil, "位置情報の取得に失敗しました"},
	}

	for _, tt := range tests {
		ctl, sc := newController(t, &fakeLookup{}, nil, overlay.GetDefaultConfig())

		_, err := ctl.Locate(context.Background(), tt.geolocator)
		if err == nil {
			t.Errorf("%s: expected an error", tt.desc)
			continue
		}
		if tt.err != nil && !errors.Is(err, tt.err) {
			t.Errorf("%s: expected %v, got %v", tt.desc, tt.err, err)
		}

		st := ctl.Status()
		if !st.IsError || st.Message != tt.message {
			t.Errorf("%s: unexpected status %+v", tt.desc, st)
		}
		if n := sc.Len(); n != 0 {
			t.Errorf("%s: expected nothing drawn, got %d layers", tt.desc, n)
		}
		if view := sc.View(); view.Zoom != scene.INITIAL_ZOOM {
			t.Errorf("%s: view should not move, got %+v", tt.desc, view)
		}
	}
}
