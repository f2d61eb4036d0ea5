package videos

import "errors"

var (
	// ErrListerUnavailable indicates no video source is configured.
	ErrListerUnavailable = errors.New("video lister unavailable")
)
