package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/battery"
	"github.com/san-kum/quadsim/internal/energy"
	"github.com/san-kum/quadsim/internal/flight"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/landing"
	"github.com/san-kum/quadsim/internal/telemetry"
	"github.com/san-kum/quadsim/internal/vehicle"
)

const (
	DefaultDt             = 0.008
	DefaultDuration       = 60.0
	DefaultTargetAltitude = 1.0
)

type Config struct {
	Source          string          `yaml:"source"`
	Integrator      string          `yaml:"integrator"`
	Dt              float64         `yaml:"dt"`
	Duration        float64         `yaml:"duration"`
	WarmUp          float64         `yaml:"warm_up"`
	StopOnTouchdown bool            `yaml:"stop_on_touchdown"`
	Vehicle         VehicleConfig   `yaml:"vehicle"`
	Battery         battery.Spec    `yaml:"battery"`
	Energy          energy.Model    `yaml:"energy"`
	Duty            host.Duty       `yaml:"duty"`
	Plan            PlanConfig      `yaml:"plan"`
	Radar           RadarConfig     `yaml:"radar"`
	Keys            []host.KeyEvent `yaml:"keys,omitempty"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
}

type VehicleConfig struct {
	Constants      flight.Constants `yaml:"constants"`
	TargetAltitude float64          `yaml:"target_altitude"`
	DescentStep    float64          `yaml:"descent_step"`
	LogPeriod      float64          `yaml:"log_period"`
}

type PlanConfig struct {
	Waypoints []input.Waypoint `yaml:"waypoints,omitempty"`
	Tolerance float64          `yaml:"tolerance"`
	Loop      bool             `yaml:"loop"`
}

type RadarConfig struct {
	FOV     float64       `yaml:"fov"`
	Range   float64       `yaml:"range"`
	Targets []host.Target `yaml:"targets,omitempty"`
}

// TelemetryConfig selects the sinks beyond the log. Empty fields disable
// the sink.
type TelemetryConfig struct {
	Database string                 `yaml:"database"`
	Influx   telemetry.InfluxConfig `yaml:"influx"`
}

func DefaultConfig() *Config {
	return &Config{
		Source:          "hover",
		Integrator:      "rk4",
		Dt:              DefaultDt,
		Duration:        DefaultDuration,
		WarmUp:          host.DefaultWarmUp,
		StopOnTouchdown: true,
		Vehicle: VehicleConfig{
			Constants:      flight.DefaultConstants(),
			TargetAltitude: DefaultTargetAltitude,
			DescentStep:    landing.DefaultDescentStep,
			LogPeriod:      vehicle.DefaultLogPeriod,
		},
		Battery: battery.DJI(),
		Energy:  energy.DefaultModel(),
		Duty:    host.DefaultDuty(),
		Plan:    PlanConfig{Tolerance: input.DefaultTolerance},
		Radar:   RadarConfig{FOV: host.DefaultRadarFOV, Range: host.DefaultRadarRange},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	if !positive(c.Dt) {
		errs = append(errs, fmt.Errorf("dt must be positive, got %v", c.Dt))
	}
	if !positive(c.Duration) {
		errs = append(errs, fmt.Errorf("duration must be positive, got %v", c.Duration))
	}
	if c.WarmUp < 0 || math.IsNaN(c.WarmUp) {
		errs = append(errs, fmt.Errorf("warm_up must not be negative, got %v", c.WarmUp))
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(input.NewRegistry().List(), c.Source) {
		errs = append(errs, fmt.Errorf("unknown input source: %s", c.Source))
	}
	if c.Source == "plan" && len(c.Plan.Waypoints) == 0 {
		errs = append(errs, errors.New("plan source needs waypoints"))
	}
	if math.IsNaN(c.Vehicle.TargetAltitude) || math.IsInf(c.Vehicle.TargetAltitude, 0) {
		errs = append(errs, fmt.Errorf("target_altitude must be finite, got %v", c.Vehicle.TargetAltitude))
	}
	if c.Vehicle.DescentStep < 0 {
		errs = append(errs, fmt.Errorf("descent_step must not be negative, got %v", c.Vehicle.DescentStep))
	}
	if c.Radar.FOV < 0 || c.Radar.Range < 0 {
		errs = append(errs, errors.New("radar fov and range must not be negative"))
	}
	errs = append(errs, c.Battery.Validate(), c.Duty.Validate())
	return errors.Join(errs...)
}

// VehicleSettings returns the vehicle configuration c describes.
func (c *Config) VehicleSettings() vehicle.Config {
	return vehicle.Config{
		Constants:      c.Vehicle.Constants,
		TargetAltitude: c.Vehicle.TargetAltitude,
		Battery:        c.Battery,
		Energy:         c.Energy,
		DescentStep:    c.Vehicle.DescentStep,
		LogPeriod:      c.Vehicle.LogPeriod,
	}
}

func (c *Config) RunConfig(keepFrames bool) host.RunConfig {
	return host.RunConfig{
		Dt:              c.Dt,
		Duration:        c.Duration,
		WarmUp:          c.WarmUp,
		StopOnTouchdown: c.StopOnTouchdown,
		KeepFrames:      keepFrames,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
