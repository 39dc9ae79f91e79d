package battery

import (
	"errors"
	"fmt"
	"math"
)

// Spec describes a battery pack.
type Spec struct {
	CapacityMAh   float64 `yaml:"capacity_mah"`
	Voltage       float64 `yaml:"voltage"`
	EnergyWh      float64 `yaml:"energy_wh"`
	MaxFlightTime float64 `yaml:"max_flight_time"`
	MaxHoverTime  float64 `yaml:"max_hover_time"`
	// SafeLanding is the remaining fraction at which the vehicle must land.
	SafeLanding float64 `yaml:"safe_landing"`
}

// DJI returns the Mavic 2 intelligent flight battery.
func DJI() Spec {
	return Spec{
		CapacityMAh:   3850,
		Voltage:       15.4,
		EnergyWh:      59.29,
		MaxFlightTime: 31 * 60,
		MaxHoverTime:  29 * 60,
		SafeLanding:   0.1,
	}
}

func (s Spec) Validate() error {
	var errs []error
	if !(s.EnergyWh > 0) || math.IsInf(s.EnergyWh, 0) {
		errs = append(errs, fmt.Errorf("battery: energy capacity must be positive, got %v", s.EnergyWh))
	}
	if s.SafeLanding < 0 || s.SafeLanding >= 1 || math.IsNaN(s.SafeLanding) {
		errs = append(errs, fmt.Errorf("battery: safe landing fraction must be in [0, 1), got %v", s.SafeLanding))
	}
	if s.Voltage < 0 || s.CapacityMAh < 0 || s.MaxFlightTime < 0 || s.MaxHoverTime < 0 {
		errs = append(errs, errors.New("battery: ratings must not be negative"))
	}
	return errors.Join(errs...)
}

// Battery tracks the remaining fraction of a pack against cumulative
// consumption in joules.
type Battery struct {
	spec      Spec
	capacity  float64
	consumed  float64
	remaining float64
}

func New(s Spec) (*Battery, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Battery{spec: s, capacity: s.EnergyWh * 3600, remaining: 1}, nil
}

// Update sets cumulative consumption and returns the remaining fraction.
// The fraction is not clamped and goes negative past empty.
func (b *Battery) Update(consumed float64) float64 {
	b.consumed = consumed
	b.remaining = 1 - consumed/b.capacity
	return b.remaining
}

func (b *Battery) Remaining() float64 { return b.remaining }

// Percent is the remaining charge for display, clamped to [0, 100].
func (b *Battery) Percent() float64 {
	return math.Max(0, math.Min(100, b.remaining*100))
}

func (b *Battery) Consumed() float64 { return b.consumed }

// CapacityJoules is the usable energy of a full pack.
func (b *Battery) CapacityJoules() float64 { return b.capacity }

func (b *Battery) SafeLandingThreshold() float64 { return b.spec.SafeLanding }

func (b *Battery) Spec() Spec { return b.spec }

// EstimatedHoverTime returns the seconds left at a constant draw of power
// watts before the pack is empty.
func (b *Battery) EstimatedHoverTime(power float64) float64 {
	if power <= 0 {
		return math.Inf(1)
	}
	left := b.capacity - b.consumed
	if left < 0 {
		return 0
	}
	return left / power
}

// Reset returns the battery to full.
func (b *Battery) Reset() {
	b.consumed = 0
	b.remaining = 1
}
