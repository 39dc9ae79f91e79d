package energy

import (
	"errors"
	"fmt"
)

// ErrUnderflow marks a derived idle duration that came out negative.
var ErrUnderflow = errors.New("energy: idle time underflow")

// UnderflowError carries the offending duration. The calculation that
// returned it used zero in its place.
type UnderflowError struct {
	Field string
	Value float64
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("energy: %s time %.6fs is negative, clamped to 0", e.Field, e.Value)
}

func (e *UnderflowError) Unwrap() error { return ErrUnderflow }

func clampIdle(field string, idle float64) (float64, error) {
	if idle < 0 {
		return 0, &UnderflowError{Field: field, Value: idle}
	}
	return idle, nil
}
