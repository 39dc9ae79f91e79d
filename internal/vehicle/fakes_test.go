package vehicle_test

import (
	"errors"
	"math"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/energy"
	"github.com/san-kum/quadsim/internal/flight"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/telemetry"
)

type imu struct{ roll, pitch, yaw float64 }

func (i *imu) RollPitchYaw() (float64, float64, float64) { return i.roll, i.pitch, i.yaw }

type triple struct{ a, b, c float64 }

type gps struct{ triple }

func (g *gps) Position() (float64, float64, float64) { return g.a, g.b, g.c }

type gyro struct{ triple }

func (g *gyro) AngularVelocity() (float64, float64, float64) { return g.a, g.b, g.c }

type motor struct {
	velocity, position float64
	velocitySet        int
}

func (m *motor) SetVelocity(v float64) { m.velocity = v; m.velocitySet++ }
func (m *motor) SetPosition(p float64) { m.position = p }

type led struct{ on bool }

func (l *led) Set(on bool) { l.on = on }

type rig struct {
	imu        *imu
	gps        *gps
	gyro       *gyro
	cameras    map[device.Role]*motor
	propellers map[device.Role]*motor
	leds       [2]*led
	usage      energy.Usage
}

// newRig returns a level vehicle at zero altitude error for a 1.0 m target.
func newRig() *rig {
	r := &rig{
		imu:        &imu{roll: -math.Pi / 2},
		gps:        &gps{triple{b: 1.6}},
		gyro:       &gyro{},
		cameras:    map[device.Role]*motor{},
		propellers: map[device.Role]*motor{},
		leds:       [2]*led{{}, {}},
		usage:      energy.Usage{Flight: 10, CPUActive: 2, Hover: 10},
	}
	for _, axis := range device.CameraAxes {
		r.cameras[axis] = &motor{}
	}
	for _, c := range device.Corners {
		r.propellers[c] = &motor{}
	}
	return r
}

func (r *rig) bindings() []device.Binding {
	bs := []device.Binding{
		{Descriptor: device.Descriptor{Kind: device.KindInertialUnit, Name: "inertial unit"}, Handle: r.imu},
		{Descriptor: device.Descriptor{Kind: device.KindGPS, Name: "gps"}, Handle: r.gps},
		{Descriptor: device.Descriptor{Kind: device.KindGyro, Name: "gyro"}, Handle: r.gyro},
		{Descriptor: device.Descriptor{Kind: device.KindLED, Name: "front left led"}, Handle: r.leds[0]},
		{Descriptor: device.Descriptor{Kind: device.KindLED, Name: "front right led"}, Handle: r.leds[1]},
	}
	for _, axis := range device.CameraAxes {
		bs = append(bs, device.Binding{Descriptor: device.Descriptor{Kind: device.KindCameraMotor, Name: "camera " + axis.String(), Role: axis}, Handle: r.cameras[axis]})
	}
	for _, c := range device.Corners {
		bs = append(bs, device.Binding{Descriptor: device.Descriptor{Kind: device.KindPropeller, Name: c.String() + " propeller", Role: c}, Handle: r.propellers[c]})
	}
	return bs
}

func (r *rig) Usage() energy.Usage { return r.usage }

// drain sets usage high enough to put the DJI pack under its threshold.
func (r *rig) drain() {
	r.usage = energy.Usage{Flight: 2100, CPUActive: 100, Hover: 2100}
}

type scripted struct {
	d   flight.Disturbance
	err error
	got []input.Tick
}

func (s *scripted) Disturbance(t input.Tick) (flight.Disturbance, error) {
	s.got = append(s.got, t)
	return s.d, s.err
}

type recordingSink struct {
	records []telemetry.Record
	err     error
}

func (s *recordingSink) Write(r telemetry.Record) error {
	s.records = append(s.records, r)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

var errSensor = errors.New("keyboard unplugged")
