package host

import (
	"errors"
	"fmt"

	"github.com/san-kum/quadsim/internal/energy"
)

// Duty is the fraction of flight time each subsystem spends busy.
type Duty struct {
	CPUActive float64 `yaml:"cpu_active"`
	IO        float64 `yaml:"io"`
	Transmit  float64 `yaml:"transmit"`
	Receive   float64 `yaml:"receive"`
}

func DefaultDuty() Duty {
	return Duty{CPUActive: 0.3, IO: 0.05, Transmit: 0.05, Receive: 0.05}
}

func (d Duty) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"cpu_active": d.CPUActive,
		"io":         d.IO,
		"transmit":   d.Transmit,
		"receive":    d.Receive,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("duty %s must be in [0, 1], got %v", name, v))
		}
	}
	if d.Transmit+d.Receive > 1 {
		errs = append(errs, errors.New("duty transmit+receive exceeds flight time"))
	}
	return errors.Join(errs...)
}

// Probe derives cumulative usage from the host clock. Hover time only
// accumulates while the plant is airborne.
type Probe struct {
	duty   Duty
	flight float64
	hover  float64
}

func NewProbe(d Duty) *Probe { return &Probe{duty: d} }

func (p *Probe) advance(dt float64, airborne bool) {
	p.flight += dt
	if airborne {
		p.hover += dt
	}
}

func (p *Probe) Usage() energy.Usage {
	return energy.Usage{
		Flight:    p.flight,
		CPUActive: p.flight * p.duty.CPUActive,
		IO:        p.flight * p.duty.IO,
		Transmit:  p.flight * p.duty.Transmit,
		Receive:   p.flight * p.duty.Receive,
		Hover:     p.hover,
	}
}

func (p *Probe) Reset() { p.flight, p.hover = 0, 0 }
