package config

import (
	"sort"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/input"
)

// Presets adjust the default configuration for a named scenario.
var Presets = map[string]func(*Config){
	"hover": func(c *Config) {
		c.Source = "hover"
		c.Duration = 60
	},
	"keyboard": func(c *Config) {
		c.Source = "keyboard"
		c.Duration = 40
		c.Keys = []host.KeyEvent{
			{From: 8, To: 14, Key: device.KeyUp},
			{From: 14, To: 18, Key: device.KeyRight},
			{From: 18, To: 24, Key: device.KeyUp},
			{From: 24, To: 26, Key: device.KeyShift + device.KeyUp},
			{From: 26, To: 30, Key: device.KeyShift + device.KeyLeft},
		}
	},
	"autopilot": func(c *Config) {
		c.Source = "autopilot"
		c.Duration = 90
		c.Radar.Targets = []host.Target{
			{X: 20, Z: 5, Altitude: 1.6},
			{X: -10, Z: 25, Altitude: 1.6},
		}
	},
	"patrol": func(c *Config) {
		c.Source = "plan"
		c.Duration = 120
		c.Plan = PlanConfig{
			Waypoints: []input.Waypoint{
				{X: 10, Z: 0, Altitude: 1.5},
				{X: 10, Z: 10, Altitude: 2},
				{X: 0, Z: 10, Altitude: 1.5},
				{X: 0, Z: 0, Altitude: 1},
			},
			Tolerance: input.DefaultTolerance,
			Loop:      true,
		}
	},
	"low-battery": func(c *Config) {
		c.Source = "hover"
		c.Duration = 120
		c.Battery.EnergyWh = 2
		c.StopOnTouchdown = true
	},
}

// GetPreset returns a fresh configuration for name, or nil if there is no
// such preset.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
