package landing

import (
	"math"

	"github.com/san-kum/quadsim/internal/flight"
)

type State int

const (
	StateFlying State = iota
	StateSafeLanding
)

func (s State) String() string {
	switch s {
	case StateFlying:
		return "flying"
	case StateSafeLanding:
		return "safe_landing"
	default:
		return "unknown"
	}
}

// DefaultDescentStep is the target altitude drop per tick while landing.
const DefaultDescentStep = 0.05

// Supervisor forces a controlled descent once the battery runs low. The
// transition is one way for the life of a flight.
type Supervisor struct {
	threshold   float64
	descentStep float64
	state       State
	triggered   float64
}

func NewSupervisor(threshold, descentStep float64) *Supervisor {
	if descentStep <= 0 {
		descentStep = DefaultDescentStep
	}
	return &Supervisor{
		threshold:   threshold,
		descentStep: descentStep,
		triggered:   math.NaN(),
	}
}

// Evaluate checks remaining against the threshold and reports whether this
// call caused the switch to StateSafeLanding.
func (s *Supervisor) Evaluate(remaining, now float64) bool {
	if s.state == StateSafeLanding || remaining > s.threshold {
		return false
	}
	s.state = StateSafeLanding
	s.triggered = now
	return true
}

// Filter passes d through while flying and zeroes it while landing.
func (s *Supervisor) Filter(d flight.Disturbance) flight.Disturbance {
	if s.state == StateSafeLanding {
		return flight.Disturbance{}
	}
	return d
}

// Descend returns the next target altitude.
func (s *Supervisor) Descend(target float64) float64 {
	if s.state == StateSafeLanding {
		return target - s.descentStep
	}
	return target
}

func (s *Supervisor) State() State { return s.state }

func (s *Supervisor) Landing() bool { return s.state == StateSafeLanding }

// TriggeredAt returns the simulation time of the transition.
func (s *Supervisor) TriggeredAt() (float64, bool) {
	if s.state != StateSafeLanding {
		return 0, false
	}
	return s.triggered, true
}

func (s *Supervisor) Threshold() float64 { return s.threshold }

// Reset returns to StateFlying for a new flight.
func (s *Supervisor) Reset() {
	s.state = StateFlying
	s.triggered = math.NaN()
}
