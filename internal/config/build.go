package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/integrators"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/telemetry"
	"github.com/san-kum/quadsim/internal/vehicle"
)

// Build assembles a host and a vehicle bound to its devices. Sinks receive
// the vehicle's telemetry records in addition to the log.
func (c *Config) Build(runID string, log zerolog.Logger, sinks ...telemetry.Sink) (host.Flight, error) {
	if err := c.Validate(); err != nil {
		return host.Flight{}, err
	}
	integ, err := integrators.New(c.Integrator)
	if err != nil {
		return host.Flight{}, err
	}

	h := host.New(physics.NewQuadrotor(),
		host.WithLogger(log),
		host.WithIntegrator(integ),
		host.WithDuty(c.Duty),
		host.WithRadar(c.Radar.FOV, c.Radar.Range, c.Radar.Targets),
	)
	h.Keyboard().SetScript(c.Keys)

	reg, err := device.Bind(device.Required(), h.Devices())
	if err != nil {
		return host.Flight{}, err
	}
	src, err := input.NewRegistry().Get(c.Source, reg, input.Options{
		Plan:      c.Plan.Waypoints,
		Tolerance: c.Plan.Tolerance,
		Loop:      c.Plan.Loop,
		Logger:    log,
	})
	if err != nil {
		return host.Flight{}, fmt.Errorf("input %s: %w", c.Source, err)
	}

	v, err := vehicle.NewWithRegistry(c.VehicleSettings(), reg, src, h.Probe(),
		vehicle.WithLogger(log),
		vehicle.WithSinks(sinks...),
		vehicle.WithRunID(runID),
	)
	if err != nil {
		return host.Flight{}, err
	}
	return host.Flight{Host: h, Vehicle: v}, nil
}
