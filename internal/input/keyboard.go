package input

import (
	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/flight"
)

// Keyboard disturbance magnitudes.
const (
	KeyPitch    = 2.0
	KeyYaw      = 1.3
	KeyRoll     = 1.0
	KeyAltitude = 0.05
)

// Keyboard drains every key pressed since the last tick. The last key per
// axis wins; altitude steps accumulate.
type Keyboard struct {
	kb device.Keyboard
}

func NewKeyboard(kb device.Keyboard) (*Keyboard, error) {
	if kb == nil {
		return nil, ErrNoDevice
	}
	return &Keyboard{kb: kb}, nil
}

func (k *Keyboard) Disturbance(Tick) (flight.Disturbance, error) {
	var d flight.Disturbance
	for key := k.kb.Key(); key > 0; key = k.kb.Key() {
		switch key {
		case device.KeyUp:
			d.Pitch = KeyPitch
		case device.KeyDown:
			d.Pitch = -KeyPitch
		case device.KeyRight:
			d.Yaw = KeyYaw
		case device.KeyLeft:
			d.Yaw = -KeyYaw
		case device.KeyShift + device.KeyUp:
			d.Altitude += KeyAltitude
		case device.KeyShift + device.KeyDown:
			d.Altitude -= KeyAltitude
		case device.KeyShift + device.KeyRight:
			d.Roll = -KeyRoll
		case device.KeyShift + device.KeyLeft:
			d.Roll = KeyRoll
		}
	}
	return d, nil
}

// Controls describes the key bindings for display.
func Controls() []string {
	return []string{
		"up: move forward",
		"down: move backward",
		"right: turn right",
		"left: turn left",
		"shift+up: raise target altitude",
		"shift+down: lower target altitude",
		"shift+right: strafe right",
		"shift+left: strafe left",
	}
}
