package charts

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrEmptyKey       = errors.New("chart key is empty")
	ErrRegistryClosed = errors.New("chart registry closed")
	ErrRender         = errors.New("chart render failed")
	ErrUnknownType    = errors.New("unknown chart type")
)
