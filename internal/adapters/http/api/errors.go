package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownChart = errors.New("unknown chart")
	ErrNotReady     = errors.New("dashboard not loaded yet")
)
