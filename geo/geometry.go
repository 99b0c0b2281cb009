package geo

import (
	"github.com/paulmach/orb"
	orb_geo "github.com/paulmach/orb/geo"
)

// RingArea returns a shoelace area of the ring using consecutive point
// pairs only. The closing pair (last -> first) is not included, so this is
// only good for ranking rings by size.
func RingArea(ring orb.Ring) float64 {
	var area float64
	for i := 0; i < len(ring)-1; i++ {
		area += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}

func outerRingArea(polygon orb.Polygon) float64 {
	if len(polygon) == 0 {
		return 0
	}
	return RingArea(polygon[0])
}

// ExtractLargestPolygon reduces a MultiPolygon to the polygon with the
// largest outer ring. The first one wins a tie. Anything else is returned
// as-is.
func ExtractLargestPolygon(geometry orb.Geometry) orb.Geometry {
	mp, ok := geometry.(orb.MultiPolygon)
	if !ok {
		return geometry
	}

	if len(mp) == 0 {
		return orb.Polygon{}
	}

	bestPoly := mp[0]
	maxArea := outerRingArea(bestPoly)

	for _, poly := range mp[1:] {
		area := outerRingArea(poly)
		if area > maxArea {
			maxArea = area
			bestPoly = poly
		}
	}

	return bestPoly
}

func walkPoints(geometry orb.Geometry, fn func(orb.Point)) {
	switch g := geometry.(type) {
	case orb.Point:
		fn(g)
	case orb.MultiPoint:
		for _, p := range g {
			fn(p)
		}
	case orb.LineString:
		for _, p := range g {
			fn(p)
		}
	case orb.Ring:
		for _, p := range g {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			walkPoints(ls, fn)
		}
	case orb.Polygon:
		for _, ring := range g {
			walkPoints(ring, fn)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			walkPoints(poly, fn)
		}
	case orb.Collection:
		for _, sub := range g {
			walkPoints(sub, fn)
		}
	case orb.Bound:
		fn(g.Min)
		fn(g.Max)
	}
}

// BoundingCenter returns the middle of the bounding box of every
// coordinate in the geometry, holes included. ok is false when there
// are no coordinates at all.
func BoundingCenter(geometry orb.Geometry) (center orb.Point, ok bool) {
	var bound orb.Bound

	walkPoints(geometry, func(p orb.Point) {
		if !ok {
			bound = orb.Bound{Min: p, Max: p}
			ok = true
			return
		}
		bound = bound.Extend(p)
	})

	if !ok {
		return orb.Point{}, false
	}
	return bound.Center(), true
}

func shiftPoints(geometry orb.Geometry, dLon, dLat float64) orb.Geometry {
	shift := func(points []orb.Point) {
		for i := range points {
			points[i][0] += dLon
			points[i][1] += dLat
		}
	}

	switch g := geometry.(type) {
	case orb.Point:
		return orb.Point{g[0] + dLon, g[1] + dLat}
	case orb.MultiPoint:
		shift(g)
	case orb.LineString:
		shift(g)
	case orb.Ring:
		shift(g)
	case orb.MultiLineString:
		for _, ls := range g {
			shift(ls)
		}
	case orb.Polygon:
		for _, ring := range g {
			shift(ring)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, ring := range poly {
				shift(ring)
			}
		}
	case orb.Collection:
		for i, sub := range g {
			g[i] = shiftPoints(sub, dLon, dLat)
		}
	case orb.Bound:
		return orb.Bound{
			Min: orb.Point{g.Min[0] + dLon, g.Min[1] + dLat},
			Max: orb.Point{g.Max[0] + dLon, g.Max[1] + dLat},
		}
	}
	return geometry
}

// Translate returns a copy of the geometry moved so that its bounding
// center lands on 'target'. The input is never modified.
func Translate(geometry orb.Geometry, target orb.Point) orb.Geometry {
	if geometry == nil {
		return nil
	}

	clone := orb.Clone(geometry)

	current, ok := BoundingCenter(geometry)
	if !ok {
		return clone
	}

	return shiftPoints(clone, target[0]-current[0], target[1]-current[1])
}

// GeodesicAreaM2 is the area on the sphere in square meters. Only
// meaningful for geometry that has not been translated.
func GeodesicAreaM2(geometry orb.Geometry) float64 {
	if geometry == nil {
		return 0
	}
	return orb_geo.Area(geometry)
}
