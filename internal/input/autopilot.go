package input

import (
	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/flight"
)

const (
	// ArrivalDistance is how close a radar target must be to count as reached.
	ArrivalDistance = 2.5
	ArrivalMessage  = "DESTINATION_ARRIVED"

	autopilotPitch = 2.0
	autopilotSpin  = 0.4
)

// Autopilot spins in place until the radar sees a target, then flies at it.
// The spin direction flips each time a new target streak begins. Reaching a
// target is announced on every emitter.
type Autopilot struct {
	radar      device.Radar
	emitters   []device.Emitter
	log        zerolog.Logger
	multiplier float64
	streak     int
	arrivals   int
}

func NewAutopilot(radar device.Radar, emitters []device.Emitter, log zerolog.Logger) (*Autopilot, error) {
	if radar == nil {
		return nil, ErrNoDevice
	}
	return &Autopilot{radar: radar, emitters: emitters, log: log, multiplier: 1}, nil
}

func (a *Autopilot) Disturbance(t Tick) (flight.Disturbance, error) {
	targets := a.radar.Targets()
	if len(targets) == 0 {
		a.streak = 0
		return flight.Disturbance{Yaw: a.multiplier * autopilotSpin}, nil
	}

	a.streak++
	for i, tgt := range targets {
		a.log.Debug().Int("target", i).Float64("distance", tgt.Distance).Float64("azimuth", tgt.Azimuth).Msg("radar target")
		if tgt.Distance < ArrivalDistance {
			a.arrive(t.Time)
		}
	}
	if a.streak == 1 {
		a.multiplier = -a.multiplier
	}
	return flight.Disturbance{Pitch: autopilotPitch}, nil
}

func (a *Autopilot) arrive(now float64) {
	a.arrivals++
	for _, e := range a.emitters {
		if err := e.Send([]byte(ArrivalMessage)); err != nil {
			a.log.Warn().Err(err).Float64("time", now).Msg("arrival message not sent")
		}
	}
}

// Reset forgets the search direction and contact history.
func (a *Autopilot) Reset() {
	a.multiplier = 1
	a.streak = 0
	a.arrivals = 0
}

// Arrivals counts ticks on which a target was within ArrivalDistance.
func (a *Autopilot) Arrivals() int { return a.arrivals }
