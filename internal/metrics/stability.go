package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/physics"
)

// Stability is the fraction of frames with roll and pitch inside threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f host.Frame) {
	s.samples++
	if math.Abs(f.State[physics.Roll]) > s.threshold || math.Abs(f.State[physics.Pitch]) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
