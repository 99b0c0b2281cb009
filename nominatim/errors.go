package nominatim

import "errors"

var (
	// ErrLookupFailed is returned for transport errors, non-2xx responses
	// and bodies that cannot be decoded.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrNotFound is returned when there are no results or the first
	// result has no geometry.
	ErrNotFound = errors.New("not found")
)
