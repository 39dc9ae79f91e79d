package input

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/flight"
)

// Waypoint is a horizontal fix plus the target altitude to hold there.
type Waypoint struct {
	X        float64 `yaml:"x"`
	Z        float64 `yaml:"z"`
	Altitude float64 `yaml:"altitude"`
}

const (
	DefaultTolerance = 1.0

	planYawGain     = 2.0
	planAlignment   = 0.3
	planAltitudeTol = 0.025
)

// FlightPlan steers through waypoints in order. Heading is measured as
// atan2(dz, dx) against the inertial-unit yaw. Once every waypoint is
// reached it hovers, unless Loop is set.
type FlightPlan struct {
	waypoints []Waypoint
	tolerance float64
	loop      bool
	next      int
	laps      int
}

func NewFlightPlan(waypoints []Waypoint, tolerance float64, loop bool) (*FlightPlan, error) {
	if len(waypoints) == 0 {
		return nil, errors.New("input: flight plan has no waypoints")
	}
	for i, w := range waypoints {
		if !finite(w.X, w.Z, w.Altitude) {
			return nil, fmt.Errorf("input: waypoint %d is not finite", i)
		}
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return &FlightPlan{waypoints: wps, tolerance: tolerance, loop: loop}, nil
}

func (p *FlightPlan) Disturbance(t Tick) (flight.Disturbance, error) {
	if p.Done() {
		return flight.Disturbance{}, nil
	}

	w := p.waypoints[p.next]
	dx, dz := w.X-t.Position.X, w.Z-t.Position.Z
	if math.Hypot(dx, dz) < p.tolerance {
		p.advance()
		return flight.Disturbance{}, nil
	}

	var d flight.Disturbance
	headingErr := wrapAngle(math.Atan2(dz, dx) - t.Sample.Yaw)
	// a positive yaw disturbance turns clockwise
	d.Yaw = -flight.Clamp(planYawGain*headingErr, -KeyYaw, KeyYaw)
	if math.Abs(headingErr) < planAlignment {
		d.Pitch = KeyPitch
	}

	switch diff := w.Altitude - t.TargetAltitude; {
	case diff > planAltitudeTol:
		d.Altitude = KeyAltitude
	case diff < -planAltitudeTol:
		d.Altitude = -KeyAltitude
	}
	return d, nil
}

func (p *FlightPlan) advance() {
	p.next++
	if p.next == len(p.waypoints) && p.loop {
		p.next = 0
		p.laps++
	}
}

// Done reports whether the last waypoint of a non-looping plan was reached.
func (p *FlightPlan) Done() bool { return p.next >= len(p.waypoints) }

// Next returns the index of the waypoint being flown to.
func (p *FlightPlan) Next() int { return p.next }

func (p *FlightPlan) Laps() int { return p.laps }

// Reset starts the plan over from the first waypoint.
func (p *FlightPlan) Reset() {
	p.next = 0
	p.laps = 0
}

func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
