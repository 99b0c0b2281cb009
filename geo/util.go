package geo

import (
	venise_geo "github.com/dernise/venise/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeometrySupported reports whether the geometry has an area to draw.
func GeometrySupported(geometry orb.Geometry) bool {
	switch geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

func convertToVenisePolygon(orbPolygon orb.Polygon) venise_geo.Polygon {
	polygon := venise_geo.Polygon{
		Rings: make([][]venise_geo.Point, len(orbPolygon)),
	}
	for ringIdx, ring := range orbPolygon {
		ringPoints := make([]venise_geo.Point, len(ring))
		for ptsIdx, coord := range ring {
			ringPoints[ptsIdx] = venise_geo.Point(coord)
		}
		polygon.Rings[ringIdx] = ringPoints
	}
	return polygon
}

func polylabel(polygon orb.Polygon) orb.Point {
	return orb.Point(venise_geo.Polylabel(convertToVenisePolygon(polygon), 0.000001, false))
}

// LabelPoint returns a point to hang a popup on. Uses the centroid unless
// it falls outside of the shape (think crescent shaped islands), in which
// case the pole of inaccessibility of the largest polygon is used.
func LabelPoint(geometry orb.Geometry) orb.Point {
	center, _ := planar.CentroidArea(geometry)
	switch typedGeometry := geometry.(type) {
	case orb.Polygon:
		if len(typedGeometry) == 0 || len(typedGeometry[0]) < 3 {
			break
		}
		if !planar.PolygonContains(typedGeometry, center) {
			return polylabel(typedGeometry)
		}
	case orb.MultiPolygon:
		if len(typedGeometry) == 0 {
			break
		}
		if !planar.MultiPolygonContains(typedGeometry, center) {
			bestPoly, _ := ExtractLargestPolygon(typedGeometry).(orb.Polygon)
			if len(bestPoly) == 0 || len(bestPoly[0]) < 3 {
				break
			}
			return polylabel(bestPoly)
		}
	}
	return center
}
