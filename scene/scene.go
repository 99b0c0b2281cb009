package scene

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/Coastline/overlay"
)

const (
	INITIAL_LAT  = 36.5
	INITIAL_LON  = 138.0
	INITIAL_ZOOM = 6

	LayerKindOverlay = "overlay"
	LayerKindMarker  = "marker"
)

type View struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

func (v View) Center() orb.Point {
	return orb.Point{v.Lon, v.Lat}
}

type layer struct {
	id       overlay.LayerID
	kind     string
	geometry orb.Geometry
	style    overlay.Style
	marker   overlay.MarkerKind
	popup    string
}

func (l *layer) feature() *geojson.Feature {
	feature := geojson.NewFeature(l.geometry)
	feature.ID = uint64(l.id)
	feature.Properties["layer_id"] = uint64(l.id)
	feature.Properties["kind"] = l.kind
	if l.popup != "" {
		feature.Properties["popup"] = l.popup
	}
	switch l.kind {
	case LayerKindOverlay:
		feature.Properties["style"] = l.style
	case LayerKindMarker:
		feature.Properties["marker"] = string(l.marker)
	}
	return feature
}

// Scene is an in-memory map: the layers drawn on it and its view. The
// browser (or the lookup CLI) draws whatever a Snapshot holds.
type Scene struct {
	mutex        sync.RWMutex
	nextId       overlay.LayerID
	layers       []*layer
	view         View
	viewRevision uint64
}

var _ overlay.Renderer = (*Scene)(nil)

func (sc *Scene) add(l *layer) overlay.LayerID {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.nextId++
	l.id = sc.nextId
	sc.layers = append(sc.layers, l)
	return l.id
}

func (sc *Scene) AddGeometry(geometry orb.Geometry, style overlay.Style, popup string) overlay.LayerID {
	return sc.add(&layer{
		kind:     LayerKindOverlay,
		geometry: geometry,
		style:    style,
		popup:    popup,
	})
}

func (sc *Scene) AddMarker(point orb.Point, kind overlay.MarkerKind, popup string) overlay.LayerID {
	return sc.add(&layer{
		kind:     LayerKindMarker,
		geometry: point,
		marker:   kind,
		popup:    popup,
	})
}

// Remove is a no-op for unknown ids.
func (sc *Scene) Remove(id overlay.LayerID) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	for i, l := range sc.layers {
		if l.id == id {
			sc.layers = append(sc.layers[:i], sc.layers[i+1:]...)
			return
		}
	}
}

func (sc *Scene) SetView(center orb.Point, zoom int) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.view = View{
		Lat:  center.Lat(),
		Lon:  center.Lon(),
		Zoom: zoom,
	}
	sc.viewRevision++
}

func (sc *Scene) Center() orb.Point {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.view.Center()
}

func (sc *Scene) View() View {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.view
}

func (sc *Scene) Len() int {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return len(sc.layers)
}

// FeatureCollection returns every layer as a feature, in drawing order.
func (sc *Scene) FeatureCollection() *geojson.FeatureCollection {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.featureCollection()
}

func (sc *Scene) featureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range sc.layers {
		fc.Append(l.feature())
	}
	return fc
}

// Snapshot is the scene as the browser draws it. ViewRevision only
// changes when the view is set, so a client can tell a moved view apart
// from one it has panned away from since.
type Snapshot struct {
	View         View                       `json:"view"`
	ViewRevision uint64                     `json:"view_revision"`
	Layers       *geojson.FeatureCollection `json:"layers"`
}

func (sc *Scene) Snapshot() Snapshot {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	return Snapshot{
		View:         sc.view,
		ViewRevision: sc.viewRevision,
		Layers:       sc.featureCollection(),
	}
}

func NewScene() *Scene {
	return &Scene{
		view: View{
			Lat:  INITIAL_LAT,
			Lon:  INITIAL_LON,
			Zoom: INITIAL_ZOOM,
		},
	}
}
