// Package vehicle runs one quadrotor's control loop: energy accounting,
// battery, safe-landing supervision, input and stabilization, once per tick.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/battery"
	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/energy"
	"github.com/san-kum/quadsim/internal/flight"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/landing"
	"github.com/san-kum/quadsim/internal/telemetry"
)

// DefaultLogPeriod is the simulated time between telemetry records.
const DefaultLogPeriod = 5.0

// Probe supplies cumulative durations since the vehicle started.
type Probe interface {
	Usage() energy.Usage
}

type Config struct {
	Constants      flight.Constants
	TargetAltitude float64
	Battery        battery.Spec
	Energy         energy.Model
	DescentStep    float64
	LogPeriod      float64
}

func DefaultConfig() Config {
	return Config{
		Constants:      flight.DefaultConstants(),
		TargetAltitude: 1.0,
		Battery:        battery.DJI(),
		Energy:         energy.DefaultModel(),
		DescentStep:    landing.DefaultDescentStep,
		LogPeriod:      DefaultLogPeriod,
	}
}

// Status is what one Step did.
type Status struct {
	Time           float64
	Sample         flight.Sample
	Position       input.Position
	Disturbance    flight.Disturbance
	Command        flight.Command
	Energy         energy.Snapshot
	Remaining      float64
	State          landing.State
	TargetAltitude float64
	// LandingTriggered is set on the tick the supervisor switched to safe
	// landing.
	LandingTriggered bool
	// InputErr is the input failure this tick flew through, if any.
	InputErr error
}

type Option func(*Vehicle)

func WithLogger(log zerolog.Logger) Option {
	return func(v *Vehicle) { v.log = log }
}

// WithSinks adds telemetry sinks after the vehicle's own log. Sink errors
// are logged, never returned.
func WithSinks(sinks ...telemetry.Sink) Option {
	return func(v *Vehicle) { v.sinks = append(v.sinks, sinks...) }
}

func WithRunID(id string) Option {
	return func(v *Vehicle) { v.runID = id }
}

type Vehicle struct {
	cfg     Config
	devices *device.Registry
	ctrl    *flight.Controller
	battery *battery.Battery
	sup     *landing.Supervisor
	source  input.Source
	probe   Probe

	log   zerolog.Logger
	sinks []telemetry.Sink
	runID string

	nextLog     float64
	inputErrors int
	underflows  int
	last        Status
}

// New binds provided against the required device set and builds a vehicle.
// No vehicle is returned when binding fails.
func New(cfg Config, provided []device.Binding, source input.Source, probe Probe, opts ...Option) (*Vehicle, error) {
	reg, err := device.Bind(device.Required(), provided)
	if err != nil {
		return nil, err
	}
	return NewWithRegistry(cfg, reg, source, probe, opts...)
}

// NewWithRegistry builds a vehicle over devices that are already bound.
func NewWithRegistry(cfg Config, reg *device.Registry, source input.Source, probe Probe, opts ...Option) (*Vehicle, error) {
	if reg == nil {
		return nil, fmt.Errorf("vehicle: %w: no device registry", device.ErrConfiguration)
	}
	if source == nil || probe == nil {
		return nil, errors.New("vehicle: input source and probe are required")
	}
	if cfg.LogPeriod <= 0 {
		cfg.LogPeriod = DefaultLogPeriod
	}
	batt, err := battery.New(cfg.Battery)
	if err != nil {
		return nil, fmt.Errorf("vehicle: %w", err)
	}

	v := &Vehicle{
		cfg:     cfg,
		devices: reg,
		ctrl:    flight.NewController(cfg.Constants, cfg.TargetAltitude),
		battery: batt,
		sup:     landing.NewSupervisor(cfg.Battery.SafeLanding, cfg.DescentStep),
		source:  source,
		probe:   probe,
		log:     zerolog.Nop(),
		nextLog: cfg.LogPeriod,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.sinks = append([]telemetry.Sink{telemetry.NewLogSink(v.log)}, v.sinks...)
	for _, req := range device.Required() {
		if b, ok := reg.Bound(req); ok {
			v.log.Debug().Str("device", b.Name).Stringer("requirement", req).Msg("bound")
		}
	}
	return v, nil
}

// Step runs one control tick at simulation time now. It fails only when now
// is not a finite number; every other problem is absorbed into the tick.
func (v *Vehicle) Step(now float64) (Status, error) {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return Status{}, fmt.Errorf("vehicle: invalid time %v", now)
	}
	st := Status{Time: now}

	snap, err := v.cfg.Energy.Calculate(v.probe.Usage())
	if err != nil {
		v.underflows++
		v.log.Warn().Err(err).Float64("time", now).Msg("energy underflow")
	}
	st.Energy = snap
	st.Remaining = v.battery.Update(snap.Total)

	if v.sup.Evaluate(st.Remaining, now) {
		st.LandingTriggered = true
		v.log.Warn().
			Float64("time", now).
			Float64("remaining", st.Remaining).
			Float64("threshold", v.sup.Threshold()).
			Msg("battery low, safe landing")
	}
	v.ctrl.SetTargetAltitude(v.sup.Descend(v.ctrl.TargetAltitude()))

	st.Sample, st.Position = v.readSensors()

	d, err := v.source.Disturbance(input.Tick{
		Time:           now,
		Sample:         st.Sample,
		Position:       st.Position,
		TargetAltitude: v.ctrl.TargetAltitude(),
	})
	if err == nil {
		err = input.Check(d)
	}
	if err != nil {
		v.inputErrors++
		v.log.Debug().Err(err).Float64("time", now).Msg("input dropped")
		st.InputErr = err
		d = flight.Disturbance{}
	}
	d = v.sup.Filter(d)
	if d.Altitude != 0 {
		v.ctrl.AdjustTargetAltitude(d.Altitude)
	}
	st.Disturbance = d
	st.TargetAltitude = v.ctrl.TargetAltitude()

	st.Command = v.ctrl.Actuate(st.Sample, d)
	v.drive(st.Command)
	v.blink(now)

	st.State = v.sup.State()
	if now >= v.nextLog {
		v.emit(st)
		for v.nextLog <= now {
			v.nextLog += v.cfg.LogPeriod
		}
	}

	v.last = st
	return st, nil
}

func (v *Vehicle) readSensors() (flight.Sample, input.Position) {
	var s flight.Sample
	s.Roll, s.Pitch, s.Yaw = v.devices.InertialUnit().RollPitchYaw()
	s.RollRate, s.PitchRate, s.YawRate = v.devices.Gyro().AngularVelocity()

	var p input.Position
	p.X, p.Altitude, p.Z = v.devices.GPS().Position()
	s.Altitude = p.Altitude
	return s, p
}

func (v *Vehicle) drive(c flight.Command) {
	for i, corner := range device.Corners {
		v.devices.Propeller(corner).SetVelocity(c.Propellers()[i])
	}
	v.devices.CameraMotor(device.RoleCameraRoll).SetPosition(c.CameraRoll)
	v.devices.CameraMotor(device.RoleCameraPitch).SetPosition(c.CameraPitch)
}

// blink alternates the first two LEDs once per simulated second.
func (v *Vehicle) blink(now float64) {
	leds := v.devices.LEDs()
	on := int(now)%2 == 1
	for i, led := range leds {
		if i > 1 {
			break
		}
		led.Set(on == (i == 0))
	}
}

func (v *Vehicle) emit(st Status) {
	r := telemetry.Record{
		RunID:               v.runID,
		SimulationTime:      st.Time,
		EProc:               st.Energy.Processing.Total,
		EComm:               st.Energy.Communication.Total,
		EMotor:              st.Energy.Motor.Total,
		TotalEnergy:         st.Energy.Total,
		RemainingBatteryPct: v.battery.Percent(),
		State:               st.State.String(),
		Altitude:            st.Sample.Altitude,
		TargetAltitude:      st.TargetAltitude,
	}
	if e := v.log.Debug(); e.Enabled() {
		for _, part := range []energy.Result{st.Energy.Processing, st.Energy.Communication, st.Energy.Motor} {
			for _, k := range part.Keys() {
				e = e.Float64(k, part.Parts[k])
			}
		}
		e.Float64("time", st.Time).Msg("energy breakdown")
	}
	for _, s := range v.sinks {
		if err := s.Write(r); err != nil {
			v.log.Error().Err(err).Float64("time", st.Time).Msg("telemetry sink failed")
		}
	}
}

// Reset starts a new flight: full battery, flying, initial target. Input
// sources that keep per-flight state start over too.
func (v *Vehicle) Reset() {
	if r, ok := v.source.(input.Resetter); ok {
		r.Reset()
	}
	v.battery.Reset()
	v.sup.Reset()
	v.ctrl.SetTargetAltitude(v.cfg.TargetAltitude)
	v.nextLog = v.cfg.LogPeriod
	v.inputErrors = 0
	v.underflows = 0
	v.last = Status{}
}

func (v *Vehicle) Devices() *device.Registry       { return v.devices }
func (v *Vehicle) Controller() *flight.Controller  { return v.ctrl }
func (v *Vehicle) Battery() *battery.Battery       { return v.battery }
func (v *Vehicle) Supervisor() *landing.Supervisor { return v.sup }
func (v *Vehicle) Last() Status                    { return v.last }
func (v *Vehicle) InputErrors() int                { return v.inputErrors }
func (v *Vehicle) Underflows() int                 { return v.underflows }

// HoverTimeLeft estimates the seconds of hover the battery has left at the
// model's hover power.
func (v *Vehicle) HoverTimeLeft() float64 {
	return v.battery.EstimatedHoverTime(v.cfg.Energy.Motor.PHover)
}
func (v *Vehicle) RunID() string                   { return v.runID }
