package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	DefaultGravity = 9.81

	// DefaultHoverVelocity is the propeller speed at which four motors
	// carry the airframe.
	DefaultHoverVelocity = 68.5
)

// State indices of the quadrotor plant. Altitude is the vertical axis and
// X/Z span the ground plane. Attitude rates are body rates.
const (
	X = iota
	Alt
	Z
	VX
	VAlt
	VZ
	Roll
	Pitch
	Yaw
	RollRate
	PitchRate
	YawRate

	StateDim
)

// Propeller indices into the control vector.
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight
)

// Quadrotor is a rigid X-frame driven by four signed propeller velocities.
// Each propeller lifts KT*v^2. Heading follows yaw, with forward along
// (cos yaw, sin yaw) in the X/Z plane; a nose-down pitch is negative and
// accelerates forward.
type Quadrotor struct {
	Mass, ArmLength float64
	Ixx, Iyy, Izz   float64
	KT, KQ          float64
	Gravity         float64
	DragCoeff       float64
	AngDrag         float64
}

func NewQuadrotor() *Quadrotor {
	q := &Quadrotor{
		Mass:      0.9,
		ArmLength: 0.2,
		Ixx:       0.02,
		Iyy:       0.02,
		Izz:       0.04,
		KQ:        0.05,
		Gravity:   DefaultGravity,
		DragCoeff: 0.3,
		AngDrag:   0.05,
	}
	q.KT = q.Mass * q.Gravity / (4 * DefaultHoverVelocity * DefaultHoverVelocity)
	return q
}

func (q *Quadrotor) StateDim() int   { return StateDim }
func (q *Quadrotor) ControlDim() int { return 4 }

// Thrusts returns the lift of each propeller in newtons.
func (q *Quadrotor) Thrusts(u dynamo.Control) [4]float64 {
	var f [4]float64
	for i := 0; i < 4 && i < len(u); i++ {
		f[i] = q.KT * u[i] * u[i]
	}
	return f
}

func (q *Quadrotor) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	f := q.Thrusts(u)
	total := f[FrontLeft] + f[FrontRight] + f[RearLeft] + f[RearRight]

	tauRoll := q.ArmLength * ((f[FrontLeft] + f[RearLeft]) - (f[FrontRight] + f[RearRight]))
	tauPitch := q.ArmLength * ((f[FrontLeft] + f[FrontRight]) - (f[RearLeft] + f[RearRight]))
	tauYaw := q.KQ * ((f[FrontRight] + f[RearLeft]) - (f[FrontLeft] + f[RearRight]))

	roll, pitch, yaw := x[Roll], x[Pitch], x[Yaw]
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)

	forward := -total * sp * cr / q.Mass
	right := total * sr / q.Mass
	drag := q.DragCoeff / q.Mass

	dx := make(dynamo.State, StateDim)
	dx[X] = x[VX]
	dx[Alt] = x[VAlt]
	dx[Z] = x[VZ]
	dx[VX] = forward*cy + right*sy - drag*x[VX]
	dx[VAlt] = total*cr*cp/q.Mass - q.Gravity - drag*x[VAlt]
	dx[VZ] = forward*sy - right*cy - drag*x[VZ]
	dx[Roll] = x[RollRate]
	dx[Pitch] = x[PitchRate]
	dx[Yaw] = x[YawRate]
	dx[RollRate] = (tauRoll - q.AngDrag*x[RollRate]) / q.Ixx
	dx[PitchRate] = (tauPitch - q.AngDrag*x[PitchRate]) / q.Iyy
	dx[YawRate] = (tauYaw - q.AngDrag*x[YawRate]) / q.Izz
	return dx
}

// Constrain keeps the vehicle on or above the ground and wraps yaw. A
// grounded vehicle rests level and still until it has the lift to climb.
func (q *Quadrotor) Constrain(x dynamo.State) dynamo.State {
	x[Yaw] = math.Remainder(x[Yaw], 2*math.Pi)
	if x[Alt] > 0 {
		return x
	}
	x[Alt] = 0
	x[VAlt] = math.Max(0, x[VAlt])
	x[VX], x[VZ] = 0, 0
	x[Roll], x[Pitch] = 0, 0
	x[RollRate], x[PitchRate], x[YawRate] = 0, 0, 0
	return x
}

// Airborne reports whether x is off the ground.
func (q *Quadrotor) Airborne(x dynamo.State) bool {
	return x[Alt] > 1e-3
}

// HoverVelocity is the per-propeller speed whose lift balances gravity.
func (q *Quadrotor) HoverVelocity() float64 {
	return math.Sqrt(q.Mass * q.Gravity / (4 * q.KT))
}

// Energy is the mechanical energy of x relative to the ground.
func (q *Quadrotor) Energy(x dynamo.State) float64 {
	ke := 0.5 * q.Mass * (x[VX]*x[VX] + x[VAlt]*x[VAlt] + x[VZ]*x[VZ])
	keRot := 0.5 * (q.Ixx*x[RollRate]*x[RollRate] + q.Iyy*x[PitchRate]*x[PitchRate] + q.Izz*x[YawRate]*x[YawRate])
	pe := q.Mass * q.Gravity * x[Alt]
	return ke + keRot + pe
}

func (q *Quadrotor) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":       q.Mass,
		"gravity":    q.Gravity,
		"drag":       q.DragCoeff,
		"ang_drag":   q.AngDrag,
		"arm_length": q.ArmLength,
		"kt":         q.KT,
		"kq":         q.KQ,
	}
}

func (q *Quadrotor) SetParam(name string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "mass":
		q.Mass = value
	case "gravity":
		q.Gravity = value
	case "drag":
		q.DragCoeff = value
	case "ang_drag":
		q.AngDrag = value
	case "arm_length":
		q.ArmLength = value
	case "kt":
		q.KT = value
	case "kq":
		q.KQ = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
