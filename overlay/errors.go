package overlay

import "errors"

var (
	ErrInvalidInput = errors.New("empty search text")
	// ErrSuperseded is returned by a search whose result was dropped
	// because a newer search in the same session started meanwhile.
	ErrSuperseded = errors.New("search superseded by a newer search")

	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
	ErrPermissionDenied       = errors.New("geolocation permission denied")
	ErrPositionUnavailable    = errors.New("position unavailable")
	ErrGeolocationTimeout     = errors.New("geolocation timed out")
)
