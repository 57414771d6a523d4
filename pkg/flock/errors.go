package flock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeStep is returned by Tick when dt is negative or not finite.
	ErrInvalidTimeStep = errors.New("flock: time step must be a finite, non-negative number of seconds")

	// ErrPlacement is wrapped by placers that cannot honour their contract.
	ErrPlacement = errors.New("flock: cannot place agents")
)

// ConfigurationError reports a construction-time invariant violation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("flock: invalid configuration: %s %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
