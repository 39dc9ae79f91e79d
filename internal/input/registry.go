package input

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/device"
)

// Options configure the strategies a Registry builds.
type Options struct {
	Plan      []Waypoint
	Tolerance float64
	Loop      bool
	Logger    zerolog.Logger
}

// Factory builds a source from the vehicle's bound devices.
type Factory func(reg *device.Registry, opts Options) (Source, error)

type Registry struct {
	sources map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Factory)}

	r.sources["hover"] = func(*device.Registry, Options) (Source, error) { return Hover{}, nil }
	r.sources["keyboard"] = func(reg *device.Registry, _ Options) (Source, error) {
		kb, ok := reg.Keyboard()
		if !ok {
			return nil, fmt.Errorf("keyboard source: %w", ErrNoDevice)
		}
		src, err := NewKeyboard(kb)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	r.sources["autopilot"] = func(reg *device.Registry, opts Options) (Source, error) {
		radar, ok := reg.Radar()
		if !ok {
			return nil, fmt.Errorf("autopilot source: %w", ErrNoDevice)
		}
		src, err := NewAutopilot(radar, reg.Emitters(), opts.Logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	r.sources["plan"] = func(_ *device.Registry, opts Options) (Source, error) {
		src, err := NewFlightPlan(opts.Plan, opts.Tolerance, opts.Loop)
		if err != nil {
			return nil, fmt.Errorf("plan source: %w", err)
		}
		return src, nil
	}

	return r
}

// Register adds or replaces a named factory.
func (r *Registry) Register(name string, f Factory) {
	r.sources[name] = f
}

func (r *Registry) Get(name string, reg *device.Registry, opts Options) (Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown input source: %s", name)
	}
	return fn(reg, opts)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
