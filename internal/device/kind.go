package device

import "fmt"

// Class groups device kinds by how the host exposes them.
type Class int

const (
	ClassSensor Class = iota + 1
	ClassActuator
	ClassMotor
)

func (c Class) String() string {
	switch c {
	case ClassSensor:
		return "sensor"
	case ClassActuator:
		return "actuator"
	case ClassMotor:
		return "motor"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Kind identifies a concrete device type.
type Kind int

const (
	KindReceiver Kind = iota + 1
	KindCamera
	KindKeyboard
	KindBatterySensor
	KindGPS
	KindCompass
	KindInertialUnit
	KindGyro
	KindRadar
	KindDistanceSensor

	KindLED
	KindEmitter

	KindCameraMotor
	KindPropeller
)

// Class returns the device class of k, or 0 for an unknown kind.
func (k Kind) Class() Class {
	switch k {
	case KindReceiver, KindCamera, KindKeyboard, KindBatterySensor, KindGPS,
		KindCompass, KindInertialUnit, KindGyro, KindRadar, KindDistanceSensor:
		return ClassSensor
	case KindLED, KindEmitter:
		return ClassActuator
	case KindCameraMotor, KindPropeller:
		return ClassMotor
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindReceiver:
		return "receiver"
	case KindCamera:
		return "camera"
	case KindKeyboard:
		return "keyboard"
	case KindBatterySensor:
		return "battery sensor"
	case KindGPS:
		return "GPS"
	case KindCompass:
		return "compass"
	case KindInertialUnit:
		return "inertial unit"
	case KindGyro:
		return "gyro"
	case KindRadar:
		return "radar"
	case KindDistanceSensor:
		return "distance sensor"
	case KindLED:
		return "LED"
	case KindEmitter:
		return "emitter"
	case KindCameraMotor:
		return "camera motor"
	case KindPropeller:
		return "propeller"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Role disambiguates motors by mounting.
type Role int

const (
	RoleNone Role = iota
	RoleCameraRoll
	RoleCameraPitch
	RoleCameraYaw
	RoleFrontLeft
	RoleFrontRight
	RoleRearLeft
	RoleRearRight
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleCameraRoll:
		return "roll"
	case RoleCameraPitch:
		return "pitch"
	case RoleCameraYaw:
		return "yaw"
	case RoleFrontLeft:
		return "front left"
	case RoleFrontRight:
		return "front right"
	case RoleRearLeft:
		return "rear left"
	case RoleRearRight:
		return "rear right"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// IsCameraAxis reports whether r names a gimbal axis.
func (r Role) IsCameraAxis() bool {
	return r == RoleCameraRoll || r == RoleCameraPitch || r == RoleCameraYaw
}

// IsCorner reports whether r names a propeller corner.
func (r Role) IsCorner() bool {
	return r == RoleFrontLeft || r == RoleFrontRight || r == RoleRearLeft || r == RoleRearRight
}

// CameraAxes lists gimbal roles in roll, pitch, yaw order.
var CameraAxes = [3]Role{RoleCameraRoll, RoleCameraPitch, RoleCameraYaw}

// Corners lists propeller roles in front-left, front-right, rear-left, rear-right order.
var Corners = [4]Role{RoleFrontLeft, RoleFrontRight, RoleRearLeft, RoleRearRight}

// Descriptor is one (kind, name, role) capability.
type Descriptor struct {
	Kind Kind
	Name string
	Role Role
}

func (d Descriptor) String() string {
	if d.Role == RoleNone {
		return fmt.Sprintf("%s %q", d.Kind, d.Name)
	}
	return fmt.Sprintf("%s %s %q", d.Role, d.Kind, d.Name)
}

// Binding pairs a descriptor with the host's handle for it.
type Binding struct {
	Descriptor
	Handle any
}

// Requirement is a (kind, role) pair a vehicle must have bound.
type Requirement struct {
	Kind Kind
	Role Role
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindCameraMotor:
		return fmt.Sprintf("camera %s motor", r.Role)
	case KindPropeller:
		return fmt.Sprintf("%s propeller", r.Role)
	default:
		return r.Kind.String()
	}
}

// Required returns the capability set needed for flight.
func Required() []Requirement {
	return []Requirement{
		{Kind: KindInertialUnit},
		{Kind: KindGPS},
		{Kind: KindGyro},
		{Kind: KindCameraMotor, Role: RoleCameraRoll},
		{Kind: KindCameraMotor, Role: RoleCameraPitch},
		{Kind: KindCameraMotor, Role: RoleCameraYaw},
		{Kind: KindPropeller, Role: RoleFrontLeft},
		{Kind: KindPropeller, Role: RoleFrontRight},
		{Kind: KindPropeller, Role: RoleRearLeft},
		{Kind: KindPropeller, Role: RoleRearRight},
	}
}
