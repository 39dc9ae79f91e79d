package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/landing"
)

// AltitudeTracking is the RMS distance between the vehicle and the altitude
// its controller holds, target plus offset. Frames during a safe landing
// are skipped.
type AltitudeTracking struct {
	name    string
	offset  float64
	sumSq   float64
	samples int
}

func NewAltitudeTracking(offset float64) *AltitudeTracking {
	return &AltitudeTracking{name: "altitude_rms", offset: offset}
}

func (a *AltitudeTracking) Name() string { return a.name }

func (a *AltitudeTracking) Observe(f host.Frame) {
	if f.Status.State != landing.StateFlying {
		return
	}
	e := f.Status.Sample.Altitude - (f.Status.TargetAltitude + a.offset)
	a.sumSq += e * e
	a.samples++
}

func (a *AltitudeTracking) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return math.Sqrt(a.sumSq / float64(a.samples))
}

func (a *AltitudeTracking) Reset() {
	a.sumSq = 0
	a.samples = 0
}
