// Package input provides the strategies that turn operator commands, radar
// returns or a flight plan into a per-tick disturbance for the stabilization
// law.
package input

import (
	"errors"
	"fmt"

	"github.com/san-kum/quadsim/internal/flight"
)

var (
	// ErrMalformed reports a disturbance with NaN or Inf components.
	ErrMalformed = errors.New("input: malformed disturbance")

	// ErrNoDevice reports a strategy built without the device it reads.
	ErrNoDevice = errors.New("input: required device not bound")
)

// Position is a GPS fix. Altitude is the vertical axis.
type Position struct {
	X        float64
	Altitude float64
	Z        float64
}

// Tick is what a source sees of the vehicle on one control step.
type Tick struct {
	Time           float64
	Sample         flight.Sample
	Position       Position
	TargetAltitude float64
}

// Source produces the disturbance for one tick. An error means the tick
// should fly with no disturbance.
type Source interface {
	Disturbance(t Tick) (flight.Disturbance, error)
}

// Resetter is a Source with per-flight state.
type Resetter interface {
	Reset()
}

// Check returns an error wrapping ErrMalformed if d is not usable.
func Check(d flight.Disturbance) error {
	if !d.IsFinite() {
		return fmt.Errorf("%w: %+v", ErrMalformed, d)
	}
	return nil
}

// Hover never disturbs the vehicle.
type Hover struct{}

func (Hover) Disturbance(Tick) (flight.Disturbance, error) { return flight.Disturbance{}, nil }
