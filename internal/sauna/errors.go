package sauna

import "errors"

// Domain errors for sauna point validation and history persistence.
var (
	// ErrUnknownPoint is returned when a point name is not in the registry.
	ErrUnknownPoint = errors.New("sauna: unknown point")

	// ErrPointReadOnly is returned when a write targets a read-only point.
	ErrPointReadOnly = errors.New("sauna: point is read-only")

	// ErrValueOutOfRange is returned when a write value violates the
	// point's device-enforced limits.
	ErrValueOutOfRange = errors.New("sauna: value out of range")
)
