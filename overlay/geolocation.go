package overlay

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

type GeolocationOptions struct {
	EnableHighAccuracy bool          `json:"enableHighAccuracy"`
	Timeout            time.Duration `json:"-"`
	MaximumAge         time.Duration `json:"-"`
}

// Geolocator returns the user's position or one of ErrPermissionDenied,
// ErrPositionUnavailable, ErrGeolocationTimeout. Anything else is
// reported as a generic failure.
type Geolocator interface {
	CurrentPosition(ctx context.Context, options GeolocationOptions) (orb.Point, error)
}

// Browser GeolocationPositionError codes.
const (
	GEOLOCATION_PERMISSION_DENIED    = 1
	GEOLOCATION_POSITION_UNAVAILABLE = 2
	GEOLOCATION_TIMEOUT              = 3
)

// ReportedPosition is a position (or failure) that was already obtained
// by the browser and posted back to us.
type ReportedPosition struct {
	Position    *orb.Point
	ErrorCode   int
	Unsupported bool
}

func (rp ReportedPosition) CurrentPosition(ctx context.Context, options GeolocationOptions) (orb.Point, error) {
	if err := ctx.Err(); err != nil {
		return orb.Point{}, err
	}
	if rp.Unsupported {
		return orb.Point{}, ErrGeolocationUnsupported
	}
	switch rp.ErrorCode {
	case 0:
	case GEOLOCATION_PERMISSION_DENIED:
		return orb.Point{}, ErrPermissionDenied
	case GEOLOCATION_POSITION_UNAVAILABLE:
		return orb.Point{}, ErrPositionUnavailable
	case GEOLOCATION_TIMEOUT:
		return orb.Point{}, ErrGeolocationTimeout
	default:
		return orb.Point{}, fmt.Errorf("unknown geolocation error code %d", rp.ErrorCode)
	}
	if rp.Position == nil {
		return orb.Point{}, ErrPositionUnavailable
	}
	return *rp.Position, nil
}
