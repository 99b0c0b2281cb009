package geo

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

type fenceRTreeEntry[V any] struct {
	polygon      orb.Polygon
	multiPolygon orb.MultiPolygon
	value        V
	containsFn   func(orb.Point) bool
}

func (e fenceRTreeEntry[V]) polygonContains(p orb.Point) bool {
	return planar.PolygonContains(e.polygon, p)
}

func (e fenceRTreeEntry[V]) multiPolygonContains(p orb.Point) bool {
	return planar.MultiPolygonContains(e.multiPolygon, p)
}

func (e fenceRTreeEntry[V]) Contains(p orb.Point) bool {
	return e.containsFn(p)
}

// FenceRTree indexes polygons by bounding box and answers
// point-in-polygon queries.
type FenceRTree[V any] struct {
	mutex sync.RWMutex
	rtree rtree.RTreeG[fenceRTreeEntry[V]]
	count int
}

func (rt *FenceRTree[V]) insertEntry(bbox orb.Bound, entry fenceRTreeEntry[V]) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	rt.rtree.Insert(bbox.Min, bbox.Max, entry)
	rt.count++
}

func (rt *FenceRTree[V]) insertPolygon(polygon orb.Polygon, value V) {
	entry := fenceRTreeEntry[V]{
		polygon: polygon,
		value:   value,
	}
	entry.containsFn = entry.polygonContains
	rt.insertEntry(polygon.Bound(), entry)
}

func (rt *FenceRTree[V]) insertMultiPolygon(multiPolygon orb.MultiPolygon, value V) {
	entry := fenceRTreeEntry[V]{
		multiPolygon: multiPolygon,
		value:        value,
	}
	entry.containsFn = entry.multiPolygonContains
	rt.insertEntry(multiPolygon.Bound(), entry)
}

func (rt *FenceRTree[V]) InsertGeometry(geometry orb.Geometry, value V) error {
	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		if len(typedGeometry) == 0 {
			return fmt.Errorf("refusing to index an empty Polygon")
		}
		rt.insertPolygon(typedGeometry, value)
	case orb.MultiPolygon:
		if len(typedGeometry) == 0 {
			return fmt.Errorf("refusing to index an empty MultiPolygon")
		}
		rt.insertMultiPolygon(typedGeometry, value)
	case nil:
		return fmt.Errorf("no geometry")
	default:
		return fmt.Errorf("GeoJSONType %s is not supported", geometry.GeoJSONType())
	}
	return nil
}

func (rt *FenceRTree[V]) GetMatches(lat, lon float64) []V {
	matches := make([]V, 0, 2)

	p := orb.Point{lon, lat}

	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	rt.rtree.Search(p, p, func(min, max [2]float64, entry fenceRTreeEntry[V]) bool {
		if entry.Contains(p) {
			matches = append(matches, entry.value)
		}
		return true
	})

	return matches
}

func (rt *FenceRTree[V]) Len() int {
	rt.mutex.RLock()
	defer rt.mutex.RUnlock()
	return rt.count
}

// Reset drops every entry.
func (rt *FenceRTree[V]) Reset() {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	rt.rtree = rtree.RTreeG[fenceRTreeEntry[V]]{}
	rt.count = 0
}

func NewFenceRTree[V any]() *FenceRTree[V] {
	return &FenceRTree[V]{}
}
