package overlay

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/UnownHash/Coastline/db_store"
	"github.com/UnownHash/Coastline/nominatim"
)

// LayerID is a handle to something drawn by a Renderer. 0 is never a
// valid handle.
type LayerID uint64

type Style struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fill_opacity"`
}

type MarkerKind string

const (
	MarkerCenter   MarkerKind = "center"
	MarkerLocation MarkerKind = "location"
)

// Renderer is the map widget.
type Renderer interface {
	AddGeometry(geometry orb.Geometry, style Style, popup string) LayerID
	AddMarker(point orb.Point, kind MarkerKind, popup string) LayerID
	Remove(LayerID)
	SetView(center orb.Point, zoom int)
	Center() orb.Point
}

type PlaceLookup interface {
	Lookup(ctx context.Context, query string) (*nominatim.Place, error)
}

type SearchRecorder interface {
	RecordSearch(ctx context.Context, search *db_store.Search) error
}
