package device

import (
	"errors"
	"fmt"
)

// Registry indexes the devices a vehicle was built with. It is read-only
// once Bind returns.
type Registry struct {
	bindings map[string]Binding
	order    []string
	bound    map[Requirement]string

	imu          InertialUnit
	gps          GPS
	gyro         Gyro
	cameraMotors map[Role]Motor
	propellers   map[Role]Motor
}

// Bind validates provided against required and indexes it by name.
//
// For every required (kind, role) the first matching device binds; later
// matches are kept as extras and reachable through Lookup and OfKind. Every
// invalid binding and every unmet requirement is reported together. The
// returned error wraps ErrConfiguration and no registry is returned with it.
func Bind(required []Requirement, provided []Binding) (*Registry, error) {
	r := &Registry{
		bindings:     make(map[string]Binding, len(provided)),
		order:        make([]string, 0, len(provided)),
		bound:        make(map[Requirement]string, len(required)),
		cameraMotors: make(map[Role]Motor, len(CameraAxes)),
		propellers:   make(map[Role]Motor, len(Corners)),
	}

	pending := make(map[Requirement]struct{}, len(required))
	for _, req := range required {
		pending[req] = struct{}{}
	}

	var errs []error
	for _, b := range provided {
		if err := validate(b); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.bindings[b.Name]; dup {
			errs = append(errs, &InvalidDeviceError{Descriptor: b.Descriptor, Reason: "duplicate device name"})
			continue
		}
		r.bindings[b.Name] = b
		r.order = append(r.order, b.Name)

		req := Requirement{Kind: b.Kind, Role: b.Role}
		if _, ok := pending[req]; !ok {
			continue
		}
		delete(pending, req)
		r.bound[req] = b.Name
		r.attach(b)
	}

	if len(pending) > 0 {
		missing := make([]Requirement, 0, len(pending))
		for _, req := range required {
			if _, ok := pending[req]; ok {
				missing = append(missing, req)
				delete(pending, req)
			}
		}
		errs = append(errs, &MissingDeviceError{Missing: missing})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

func validate(b Binding) error {
	invalid := func(reason string) error {
		return &InvalidDeviceError{Descriptor: b.Descriptor, Reason: reason}
	}
	if b.Name == "" {
		return invalid("empty device name")
	}

	var ok bool
	switch b.Kind {
	case KindInertialUnit:
		_, ok = b.Handle.(InertialUnit)
	case KindGPS:
		_, ok = b.Handle.(GPS)
	case KindGyro:
		_, ok = b.Handle.(Gyro)
	case KindRadar:
		_, ok = b.Handle.(Radar)
	case KindKeyboard:
		_, ok = b.Handle.(Keyboard)
	case KindEmitter:
		_, ok = b.Handle.(Emitter)
	case KindLED:
		_, ok = b.Handle.(LED)
	case KindCameraMotor, KindPropeller:
		_, ok = b.Handle.(Motor)
	case KindReceiver, KindCamera, KindBatterySensor, KindCompass, KindDistanceSensor:
		ok = true
	default:
		return invalid("unknown device kind")
	}
	if !ok {
		return invalid(fmt.Sprintf("handle %T does not implement %s", b.Handle, b.Kind))
	}

	switch {
	case b.Kind == KindCameraMotor && !b.Role.IsCameraAxis():
		return invalid("camera motor needs a roll, pitch or yaw axis")
	case b.Kind == KindPropeller && !b.Role.IsCorner():
		return invalid("propeller needs a corner position")
	case b.Kind.Class() != ClassMotor && b.Role != RoleNone:
		return invalid("only motors take a mounting role")
	}
	return nil
}

func (r *Registry) attach(b Binding) {
	switch b.Kind {
	case KindInertialUnit:
		r.imu = b.Handle.(InertialUnit)
	case KindGPS:
		r.gps = b.Handle.(GPS)
	case KindGyro:
		r.gyro = b.Handle.(Gyro)
	case KindCameraMotor:
		r.cameraMotors[b.Role] = b.Handle.(Motor)
	case KindPropeller:
		r.propellers[b.Role] = b.Handle.(Motor)
	}
}

func (r *Registry) InertialUnit() InertialUnit { return r.imu }
func (r *Registry) GPS() GPS                   { return r.gps }
func (r *Registry) Gyro() Gyro                 { return r.gyro }

// CameraMotor returns the gimbal motor bound to axis, or nil.
func (r *Registry) CameraMotor(axis Role) Motor { return r.cameraMotors[axis] }

// Propeller returns the propeller bound to corner, or nil.
func (r *Registry) Propeller(corner Role) Motor { return r.propellers[corner] }

// Bound returns the device that satisfied req.
func (r *Registry) Bound(req Requirement) (Binding, bool) {
	name, ok := r.bound[req]
	if !ok {
		return Binding{}, false
	}
	return r.bindings[name], true
}

func (r *Registry) Lookup(name string) (Binding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}

// Names returns device names in the order they were provided.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Len() int { return len(r.order) }

// OfKind returns all devices of kind k in provided order.
func (r *Registry) OfKind(k Kind) []Binding {
	var out []Binding
	for _, name := range r.order {
		if b := r.bindings[name]; b.Kind == k {
			out = append(out, b)
		}
	}
	return out
}

// Radar returns the first radar, if any.
func (r *Registry) Radar() (Radar, bool) {
	for _, b := range r.OfKind(KindRadar) {
		return b.Handle.(Radar), true
	}
	return nil, false
}

// Keyboard returns the first keyboard, if any.
func (r *Registry) Keyboard() (Keyboard, bool) {
	for _, b := range r.OfKind(KindKeyboard) {
		return b.Handle.(Keyboard), true
	}
	return nil, false
}

func (r *Registry) Emitters() []Emitter {
	bs := r.OfKind(KindEmitter)
	out := make([]Emitter, len(bs))
	for i, b := range bs {
		out[i] = b.Handle.(Emitter)
	}
	return out
}

func (r *Registry) LEDs() []LED {
	bs := r.OfKind(KindLED)
	out := make([]LED, len(bs))
	for i, b := range bs {
		out[i] = b.Handle.(LED)
	}
	return out
}
