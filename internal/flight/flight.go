package flight

import "math"

// Sample is one tick of sensor readings.
//
// Roll is taken as the inertial unit reports it. The unit is mounted a
// quarter turn off the body frame, so a level vehicle reads -π/2.
type Sample struct {
	Roll      float64
	Pitch     float64
	Yaw       float64
	RollRate  float64
	PitchRate float64
	YawRate   float64
	Altitude  float64
}

// Disturbance is the directed-motion input for one tick. Altitude is an
// adjustment to the target altitude, not a mixing term.
type Disturbance struct {
	Roll     float64
	Pitch    float64
	Yaw      float64
	Altitude float64
}

func (d Disturbance) IsZero() bool {
	return d == Disturbance{}
}

// IsFinite reports whether every component is a real number.
func (d Disturbance) IsFinite() bool {
	for _, v := range [...]float64{d.Roll, d.Pitch, d.Yaw, d.Altitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Constants of the stabilization law.
type Constants struct {
	VerticalThrust float64 `yaml:"vertical_thrust"`
	VerticalOffset float64 `yaml:"vertical_offset"`
	VerticalP      float64 `yaml:"vertical_p"`
	RollP          float64 `yaml:"roll_p"`
	PitchP         float64 `yaml:"pitch_p"`
	// YawP is carried for tuning tools but is not part of the law.
	YawP float64 `yaml:"yaw_p"`
}

func DefaultConstants() Constants {
	return Constants{
		VerticalThrust: 68.5,
		VerticalOffset: 0.6,
		VerticalP:      3.0,
		RollP:          50.0,
		PitchP:         30.0,
		YawP:           20.0,
	}
}

// Camera gimbal counter-motion gains.
const (
	CameraRollGain  = -0.115
	CameraPitchGain = -0.1
)

// Command is the output of one actuation.
type Command struct {
	FrontLeft   float64
	FrontRight  float64
	RearLeft    float64
	RearRight   float64
	CameraRoll  float64
	CameraPitch float64
}

// Propellers returns the velocities in front-left, front-right, rear-left,
// rear-right order.
func (c Command) Propellers() [4]float64 {
	return [4]float64{c.FrontLeft, c.FrontRight, c.RearLeft, c.RearRight}
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Actuate computes motor commands for one tick. It is a pure function of its
// arguments.
func Actuate(s Sample, d Disturbance, k Constants, target float64) Command {
	roll := s.Roll + math.Pi/2

	rollInput := k.RollP*Clamp(roll, -1, 1) + s.RollRate + d.Roll
	pitchInput := k.PitchP*Clamp(s.Pitch, -1, 1) - s.PitchRate + d.Pitch
	yawInput := d.Yaw

	altErr := Clamp(target-s.Altitude+k.VerticalOffset, -1, 1)
	verticalInput := k.VerticalP * math.Pow(altErr, 3.0)

	t, v, r, p, y := k.VerticalThrust, verticalInput, rollInput, pitchInput, yawInput
	return Command{
		FrontLeft:   t + v - r - p + y,
		FrontRight:  -(t + v + r - p - y),
		RearLeft:    -(t + v - r + p - y),
		RearRight:   t + v + r + p + y,
		CameraRoll:  CameraRollGain * s.RollRate,
		CameraPitch: CameraPitchGain * s.PitchRate,
	}
}
