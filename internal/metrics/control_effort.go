package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/host"
)

// ControlEffort is the mean propeller deviation from the hover baseline.
type ControlEffort struct {
	name     string
	baseline float64
	sum      float64
	samples  int
}

func NewControlEffort(baseline float64) *ControlEffort {
	return &ControlEffort{
		name:     "control_effort",
		baseline: baseline,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(f host.Frame) {
	if len(f.Control) == 0 {
		return
	}
	dev := 0.0
	for _, v := range f.Control {
		dev += math.Abs(math.Abs(v) - c.baseline)
	}
	c.sum += dev / float64(len(f.Control))
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
