// Package host simulates the platform a vehicle flies on: the quadrotor
// plant, its devices and clock, and the run loop that ticks the vehicle.
package host

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/vehicle"
)

// DefaultWarmUp is how long the vehicle sits idle before its first tick.
const DefaultWarmUp = 1.0

// Frame is one control tick as the host saw it.
type Frame struct {
	Time    float64
	State   dynamo.State
	Control dynamo.Control
	Status  vehicle.Status
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

func (f ObserverFunc) OnFrame(fr Frame) { f(fr) }

type RunConfig struct {
	Dt       float64
	Duration float64
	WarmUp   float64
	// StopOnTouchdown ends the run once a safe landing reaches the ground.
	StopOnTouchdown bool
	// KeepFrames records every frame in the result.
	KeepFrames bool
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:              0.008,
		Duration:        60,
		WarmUp:          DefaultWarmUp,
		StopOnTouchdown: true,
		KeepFrames:      true,
	}
}

type Result struct {
	Frames           []Frame
	Metrics          map[string]float64
	StepsTaken       int
	Final            dynamo.State
	LandingTime      float64
	LandingTriggered bool
	Touchdown        bool
	Remaining        float64
	Errors           []error
}

type Option func(*Host)

func WithLogger(log zerolog.Logger) Option {
	return func(h *Host) {
		h.log = log
		h.emitter.log = log
	}
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(h *Host) { h.integ = integ }
}

func WithDuty(d Duty) Option {
	return func(h *Host) { h.probe.duty = d }
}

func WithRadar(fov, rng float64, targets []Target) Option {
	return func(h *Host) {
		h.radar.FOV, h.radar.Range = fov, rng
		h.radar.SetTargets(targets)
	}
}

func WithStart(x0 dynamo.State) Option {
	return func(h *Host) { h.x0 = x0.Clone() }
}

// Host owns the plant state and the simulated devices bound to it.
type Host struct {
	plant *physics.Quadrotor
	integ dynamo.Integrator
	log   zerolog.Logger

	x0 dynamo.State
	x  dynamo.State
	u  dynamo.Control
	t  float64

	probe    *Probe
	radar    *Radar
	keyboard *Keyboard
	emitter  *Emitter
	cameras  [3]*CameraMotor
	leds     [2]*LED

	metrics   []Metric
	observers []Observer
}

func New(plant *physics.Quadrotor, opts ...Option) *Host {
	h := &Host{
		plant:    plant,
		integ:    integrators.NewRK4(),
		log:      zerolog.Nop(),
		x0:       make(dynamo.State, plant.StateDim()),
		probe:    NewProbe(DefaultDuty()),
		keyboard: &Keyboard{},
		emitter:  &Emitter{log: zerolog.Nop()},
	}
	h.radar = &Radar{h: h, FOV: DefaultRadarFOV, Range: DefaultRadarRange}
	for i := range h.cameras {
		h.cameras[i] = &CameraMotor{}
	}
	for i := range h.leds {
		h.leds[i] = &LED{}
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Reset()
	return h
}

func (h *Host) AddMetric(m Metric)     { h.metrics = append(h.metrics, m) }
func (h *Host) AddObserver(o Observer) { h.observers = append(h.observers, o) }

// Reset puts the plant back at its start state with the motors off.
func (h *Host) Reset() {
	h.x = h.x0.Clone()
	h.u = make(dynamo.Control, h.plant.ControlDim())
	h.t = 0
	h.probe.Reset()
	h.keyboard.clear()
}

func (h *Host) Time() float64             { return h.t }
func (h *Host) State() dynamo.State       { return h.x.Clone() }
func (h *Host) Control() dynamo.Control   { return append(dynamo.Control(nil), h.u...) }
func (h *Host) Plant() *physics.Quadrotor { return h.plant }
func (h *Host) Probe() *Probe             { return h.probe }
func (h *Host) Radar() *Radar             { return h.radar }
func (h *Host) Keyboard() *Keyboard       { return h.keyboard }
func (h *Host) Emitter() *Emitter         { return h.emitter }
func (h *Host) LEDs() [2]*LED             { return h.leds }
func (h *Host) Airborne() bool            { return h.plant.Airborne(h.x) }

// Camera returns the gimbal motor for roll, pitch or yaw, in that order.
func (h *Host) Camera(i int) *CameraMotor { return h.cameras[i] }

// integrate advances the plant by dt with whatever the motors were last told.
func (h *Host) integrate(dt float64) error {
	next := h.integ.Step(h.plant, h.x, h.u, h.t, dt)
	if !next.IsValid() {
		return &dynamo.SimulationError{Time: h.t, State: h.x.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	h.x = h.plant.Constrain(next)
	h.probe.advance(dt, h.plant.Airborne(h.x))
	h.t += dt
	return nil
}

// WarmUp lets the plant run with the motors as they are until the host
// clock reaches until. The vehicle is not ticked.
func (h *Host) WarmUp(until, dt float64) error {
	for h.t < until {
		if err := h.integrate(math.Min(dt, until-h.t)); err != nil {
			return err
		}
	}
	h.log.Debug().Float64("time", h.t).Msg("warm-up done")
	return nil
}

// StepOnce ticks v at the current host time, then integrates the plant by
// dt. Metrics and observers see the frame.
func (h *Host) StepOnce(v *vehicle.Vehicle, dt float64) (Frame, error) {
	h.keyboard.latch(h.t)
	st, err := v.Step(h.t)
	if err != nil {
		return Frame{}, err
	}
	f := Frame{Time: h.t, State: h.x.Clone(), Control: h.Control(), Status: st}
	for _, m := range h.metrics {
		m.Observe(f)
	}
	for _, o := range h.observers {
		o.OnFrame(f)
	}
	return f, h.integrate(dt)
}

// Run warms the host up, then ticks v every cfg.Dt until cfg.Duration has
// elapsed, ctx is done, or a safe landing touches down.
func (h *Host) Run(ctx context.Context, v *vehicle.Vehicle, cfg RunConfig) (*Result, error) {
	if err := validateRun(cfg); err != nil {
		return nil, err
	}
	if err := dynamo.Validate(h.plant, h.x); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{Metrics: make(map[string]float64)}
	if cfg.KeepFrames {
		result.Frames = make([]Frame, 0, steps)
	}
	for _, m := range h.metrics {
		m.Reset()
	}

	if err := h.WarmUp(cfg.WarmUp, cfg.Dt); err != nil {
		return nil, err
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			h.finish(v, result)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		f, err := h.StepOnce(v, cfg.Dt)
		if err != nil {
			var simErr *dynamo.SimulationError
			if errors.As(err, &simErr) {
				simErr.Step = i
			}
			result.Errors = append(result.Errors, err)
			h.log.Error().Err(err).Int("step", i).Float64("time", f.Time).Msg("run aborted")
			break
		}
		result.StepsTaken++
		if cfg.KeepFrames {
			result.Frames = append(result.Frames, f)
		}

		if cfg.StopOnTouchdown && v.Supervisor().Landing() && !h.Airborne() {
			result.Touchdown = true
			h.log.Info().Float64("time", h.t).Msg("touchdown")
			break
		}
	}

	h.finish(v, result)
	return result, nil
}

func (h *Host) finish(v *vehicle.Vehicle, result *Result) {
	result.Final = h.x.Clone()
	result.Remaining = v.Battery().Remaining()
	result.LandingTime, result.LandingTriggered = v.Supervisor().TriggeredAt()
	for _, m := range h.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateRun(cfg RunConfig) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.WarmUp < 0 || math.IsNaN(cfg.WarmUp) || math.IsInf(cfg.WarmUp, 0) {
		return fmt.Errorf("warm-up must not be negative, got %f", cfg.WarmUp)
	}
	return nil
}
