package device

// Key codes reported by a Keyboard. Shift is added to the base code.
const (
	KeyLeft  = 314
	KeyUp    = 315
	KeyRight = 316
	KeyDown  = 317
	KeyShift = 65536
)

// InertialUnit reports body attitude in radians.
type InertialUnit interface {
	RollPitchYaw() (roll, pitch, yaw float64)
}

// GPS reports position in meters. The y axis is vertical.
type GPS interface {
	Position() (x, y, z float64)
}

// Gyro reports angular rates in rad/s.
type Gyro interface {
	AngularVelocity() (roll, pitch, yaw float64)
}

type Motor interface {
	SetVelocity(v float64)
	SetPosition(p float64)
}

// RadarTarget is one radar return relative to the vehicle heading.
type RadarTarget struct {
	Distance float64
	Azimuth  float64
}

type Radar interface {
	Targets() []RadarTarget
}

// Keyboard yields pressed keys one at a time and returns 0 once drained for
// the current step.
type Keyboard interface {
	Key() int
}

type Emitter interface {
	Send(msg []byte) error
}

type LED interface {
	Set(on bool)
}
