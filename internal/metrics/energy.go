package metrics

import (
	"github.com/san-kum/quadsim/internal/host"
)

// EnergyUsed is the cumulative energy drawn by the end of the run, in joules.
type EnergyUsed struct {
	name  string
	total float64
}

func NewEnergyUsed() *EnergyUsed {
	return &EnergyUsed{name: "energy_used"}
}

func (e *EnergyUsed) Name() string { return e.name }

func (e *EnergyUsed) Observe(f host.Frame) {
	e.total = f.Status.Energy.Total
}

func (e *EnergyUsed) Value() float64 { return e.total }

func (e *EnergyUsed) Reset() { e.total = 0 }

// MeanPower is the average draw in watts between the first and last frame.
type MeanPower struct {
	name          string
	firstT, lastT float64
	firstE, lastE float64
	samples       int
}

func NewMeanPower() *MeanPower {
	return &MeanPower{name: "mean_power"}
}

func (p *MeanPower) Name() string { return p.name }

func (p *MeanPower) Observe(f host.Frame) {
	if p.samples == 0 {
		p.firstT, p.firstE = f.Time, f.Status.Energy.Total
	}
	p.lastT, p.lastE = f.Time, f.Status.Energy.Total
	p.samples++
}

func (p *MeanPower) Value() float64 {
	if p.lastT <= p.firstT {
		return 0
	}
	return (p.lastE - p.firstE) / (p.lastT - p.firstT)
}

func (p *MeanPower) Reset() {
	p.firstT, p.lastT = 0, 0
	p.firstE, p.lastE = 0, 0
	p.samples = 0
}

// Default returns the metrics the CLI attaches to every run.
func Default(baseline, offset float64) []host.Metric {
	return []host.Metric{
		NewControlEffort(baseline),
		NewStability(0.3),
		NewAltitudeTracking(offset),
		NewEnergyUsed(),
		NewMeanPower(),
	}
}
