package wave

import "errors"

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid simulation config")
	// ErrMissingProber is returned by New without a spatial query.
	ErrMissingProber = errors.New("spatial occupancy query is required")
	// ErrMissingEnergySource is returned by New without an audio energy source.
	ErrMissingEnergySource = errors.New("audio energy source is required")
	// ErrDiverged signals that the divergence scan found a non-finite or
	// out-of-range value.
	ErrDiverged = errors.New("simulation diverged")
	// ErrBackendUnavailable is returned when the requested stepping backend
	// was not compiled in or could not be initialised.
	ErrBackendUnavailable = errors.New("stepping backend unavailable")
)
