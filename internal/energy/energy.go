package energy

import (
	"errors"
	"maps"
	"sort"
)

// Power draw in watts of the reference airframe and companion computer.
const (
	PComm             = 8.4
	PCommIdle         = 4.2
	PFlightController = 8.0
	PCPUIdle          = 4.0
	PCPUActive        = 8.0
	PHover            = 95.02
)

// Result is one calculator's breakdown in joules. Total is also present in
// Parts under Name.
type Result struct {
	Name  string
	Total float64
	Parts map[string]float64
}

type part struct {
	key   string
	value float64
}

// newResult sums parts in the given order so totals are reproducible.
func newResult(name string, parts ...part) Result {
	m := make(map[string]float64, len(parts)+1)
	total := 0.0
	for _, p := range parts {
		m[p.key] = p.value
		total += p.value
	}
	m[name] = total
	return Result{Name: name, Total: total, Parts: m}
}

// Keys returns the breakdown keys in sorted order, total excluded.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Parts))
	for k := range r.Parts {
		if k != r.Name {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Processing is the companion computer plus flight controller.
type Processing struct {
	PActive           float64 `yaml:"p_active"`
	PIdle             float64 `yaml:"p_idle"`
	PIO               float64 `yaml:"p_io"`
	PFlightController float64 `yaml:"p_fc"`
}

func DefaultProcessing() Processing {
	return Processing{
		PActive:           PCPUActive,
		PIdle:             PCPUIdle,
		PIO:               PCPUActive,
		PFlightController: PFlightController,
	}
}

// Calculate returns processing energy for cumulative durations in seconds.
// Idle time is flight minus active; when that is negative it counts as zero
// and an *UnderflowError is returned with the result.
func (p Processing) Calculate(active, flight, io float64) (Result, error) {
	idle, err := clampIdle("cpu idle", flight-active)
	return newResult("e_proc",
		part{"e_cpu_active", p.PActive * active},
		part{"e_cpu_idle", p.PIdle * idle},
		part{"e_fc", p.PFlightController * (flight / 10)},
		part{"e_cpu_io", p.PIO * io},
	), err
}

// Communication is the radio link.
type Communication struct {
	PTransmit float64 `yaml:"p_transmit"`
	PReceive  float64 `yaml:"p_receive"`
	PIdle     float64 `yaml:"p_idle"`
}

func DefaultCommunication() Communication {
	return Communication{PTransmit: PComm, PReceive: PComm, PIdle: PCommIdle}
}

// Calculate returns communication energy. Idle is supplied by the caller and
// is clamped the same way as processing idle.
func (c Communication) Calculate(transmit, receive, idle float64) (Result, error) {
	idle, err := clampIdle("radio idle", idle)
	return newResult("e_comm",
		part{"e_transmit", c.PTransmit * transmit},
		part{"e_receive", c.PReceive * receive},
		part{"e_idle", c.PIdle * idle},
	), err
}

// Motor is propulsion. Takeoff and Move are fixed energies in joules.
type Motor struct {
	PHover  float64 `yaml:"p_hover"`
	Takeoff float64 `yaml:"e_takeoff"`
	Move    float64 `yaml:"e_move"`
}

func DefaultMotor() Motor {
	return Motor{PHover: PHover}
}

func (m Motor) Calculate(hover float64) Result {
	return newResult("e_motor",
		part{"e_hover", m.PHover * hover},
		part{"e_move", m.Move},
		part{"e_takeoff", m.Takeoff},
	)
}

// Usage is the set of cumulative durations since vehicle start, in seconds.
type Usage struct {
	Flight    float64
	CPUActive float64
	IO        float64
	Transmit  float64
	Receive   float64
	Hover     float64
}

// Model combines the three calculators. It holds no state between calls.
type Model struct {
	Processing    Processing    `yaml:"processing"`
	Communication Communication `yaml:"communication"`
	Motor         Motor         `yaml:"motor"`
}

func DefaultModel() Model {
	return Model{
		Processing:    DefaultProcessing(),
		Communication: DefaultCommunication(),
		Motor:         DefaultMotor(),
	}
}

// Snapshot is the cumulative energy picture at one instant.
type Snapshot struct {
	Processing    Result
	Communication Result
	Motor         Result
	Total         float64
}

// Calculate evaluates every calculator for u. Radio idle is the flight time
// not spent transmitting or receiving. Underflow errors from the parts are
// joined and returned alongside a usable snapshot.
func (m Model) Calculate(u Usage) (Snapshot, error) {
	proc, perr := m.Processing.Calculate(u.CPUActive, u.Flight, u.IO)
	comm, cerr := m.Communication.Calculate(u.Transmit, u.Receive, u.Flight-(u.Transmit+u.Receive))
	motor := m.Motor.Calculate(u.Hover)

	s := Snapshot{
		Processing:    proc,
		Communication: comm,
		Motor:         motor,
		Total:         proc.Total + comm.Total + motor.Total,
	}
	return s, errors.Join(perr, cerr)
}

// Fields flattens the snapshot into one record keyed like the parts, plus
// total_energy.
func (s Snapshot) Fields() map[string]float64 {
	out := make(map[string]float64, len(s.Processing.Parts)+len(s.Communication.Parts)+len(s.Motor.Parts)+1)
	maps.Copy(out, s.Processing.Parts)
	maps.Copy(out, s.Communication.Parts)
	maps.Copy(out, s.Motor.Parts)
	out["total_energy"] = s.Total
	return out
}
