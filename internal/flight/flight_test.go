package flight

import (
	"math"
	"testing"
)

const eps = 1e-9

// level is the raw inertial-unit roll of an untilted vehicle.
const level = -math.Pi / 2

func TestActuate_Hover(t *testing.T) {
	k := DefaultConstants()
	target := 1.0
	// zero altitude error sits one offset above the target
	s := Sample{Roll: level, Altitude: target + k.VerticalOffset}

	cmd := Actuate(s, Disturbance{}, k, target)

	want := [4]float64{k.VerticalThrust, -k.VerticalThrust, -k.VerticalThrust, k.VerticalThrust}
	for i, got := range cmd.Propellers() {
		if math.Abs(got-want[i]) > eps {
			t.Errorf("propeller %d: expected %f, got %f", i, want[i], got)
		}
	}
	if cmd.CameraRoll != 0 || cmd.CameraPitch != 0 {
		t.Errorf("camera should be still, got %f %f", cmd.CameraRoll, cmd.CameraPitch)
	}
}

func TestActuate_NumericExample(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level, Altitude: 0.6}

	cmd := Actuate(s, Disturbance{}, k, 1.0)

	if math.Abs(cmd.FrontLeft-71.5) > eps || math.Abs(cmd.RearRight-71.5) > eps {
		t.Errorf("expected 71.5 on front-left/rear-right, got %f %f", cmd.FrontLeft, cmd.RearRight)
	}
	if math.Abs(cmd.FrontRight+71.5) > eps || math.Abs(cmd.RearLeft+71.5) > eps {
		t.Errorf("expected -71.5 on front-right/rear-left, got %f %f", cmd.FrontRight, cmd.RearLeft)
	}
}

func TestActuate_VerticalSaturation(t *testing.T) {
	k := DefaultConstants()
	tests := []struct {
		name     string
		altitude float64
		vertical float64
	}{
		{"far below", -50, k.VerticalP},
		{"just below clamp", -0.4, k.VerticalP},
		{"far above", 50, -k.VerticalP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Actuate(Sample{Roll: level, Altitude: tt.altitude}, Disturbance{}, k, 1.0)
			got := cmd.FrontLeft - k.VerticalThrust
			if math.Abs(got-tt.vertical) > eps {
				t.Errorf("expected vertical input %f, got %f", tt.vertical, got)
			}
		})
	}
}

func TestActuate_CubicResponse(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level, Altitude: 1.0 + k.VerticalOffset - 0.5}
	cmd := Actuate(s, Disturbance{}, k, 1.0)

	want := k.VerticalThrust + k.VerticalP*0.125
	if math.Abs(cmd.FrontLeft-want) > eps {
		t.Errorf("expected %f, got %f", want, cmd.FrontLeft)
	}
}

func TestActuate_RollMixingSymmetry(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level, Altitude: 0.4}

	base := Actuate(s, Disturbance{}, k, 1.0).Propellers()
	pos := Actuate(s, Disturbance{Roll: 1.0}, k, 1.0).Propellers()
	neg := Actuate(s, Disturbance{Roll: -1.0}, k, 1.0).Propellers()

	// roll enters as -R, -R, +R, +R after sign inversion
	signs := [4]float64{-1, -1, 1, 1}
	for i := range base {
		if math.Abs((pos[i]-base[i])-signs[i]) > eps {
			t.Errorf("propeller %d: +roll contribution %f, expected %f", i, pos[i]-base[i], signs[i])
		}
		if math.Abs((neg[i]-base[i])+(pos[i]-base[i])) > eps {
			t.Errorf("propeller %d: negated roll should flip the contribution", i)
		}
	}
}

func TestActuate_PitchAndYawMixing(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level, Altitude: 0.4}
	base := Actuate(s, Disturbance{}, k, 1.0).Propellers()

	pitch := Actuate(s, Disturbance{Pitch: 1}, k, 1.0).Propellers()
	yaw := Actuate(s, Disturbance{Yaw: 1}, k, 1.0).Propellers()

	pitchSigns := [4]float64{-1, 1, -1, 1}
	yawSigns := [4]float64{1, 1, 1, 1}
	for i := range base {
		if d := pitch[i] - base[i]; math.Abs(d-pitchSigns[i]) > eps {
			t.Errorf("propeller %d: pitch contribution %f, expected %f", i, d, pitchSigns[i])
		}
		if d := yaw[i] - base[i]; math.Abs(d-yawSigns[i]) > eps {
			t.Errorf("propeller %d: yaw contribution %f, expected %f", i, d, yawSigns[i])
		}
	}
}

func TestActuate_AttitudeClamp(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level + 5, Altitude: 1.6}
	cmd := Actuate(s, Disturbance{}, k, 1.0)

	// clamped roll of 1 yields RollP on the roll input
	if math.Abs(cmd.RearRight-(k.VerticalThrust+k.RollP)) > eps {
		t.Errorf("expected roll input saturated at %f, got %f", k.RollP, cmd.RearRight-k.VerticalThrust)
	}
}

func TestActuate_Camera(t *testing.T) {
	cmd := Actuate(Sample{Roll: level, RollRate: 2, PitchRate: -3}, Disturbance{}, DefaultConstants(), 1.0)
	if math.Abs(cmd.CameraRoll+0.23) > eps {
		t.Errorf("camera roll: expected -0.23, got %f", cmd.CameraRoll)
	}
	if math.Abs(cmd.CameraPitch-0.3) > eps {
		t.Errorf("camera pitch: expected 0.3, got %f", cmd.CameraPitch)
	}
}

func TestActuate_Deterministic(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: -1.3, Pitch: 0.2, Yaw: 2, RollRate: 0.4, PitchRate: -0.7, Altitude: 3.3}
	d := Disturbance{Roll: 0.5, Pitch: -2, Yaw: 1.3}

	first := Actuate(s, d, k, 2.0)
	for i := 0; i < 100; i++ {
		if got := Actuate(s, d, k, 2.0); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}

func TestActuate_YawGainUnused(t *testing.T) {
	k := DefaultConstants()
	s := Sample{Roll: level, Yaw: 1.2, Altitude: 0.4}
	a := Actuate(s, Disturbance{}, k, 1.0)
	k.YawP = 0
	b := Actuate(s, Disturbance{}, k, 1.0)
	if a != b {
		t.Error("measured yaw should not feed the law")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{-2, -1},
		{-1, -1},
		{0.3, 0.3},
		{1, 1},
		{7, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, -1, 1); got != tt.want {
			t.Errorf("Clamp(%f): expected %f, got %f", tt.x, tt.want, got)
		}
	}
}

func TestController(t *testing.T) {
	c := NewController(DefaultConstants(), 1.0)
	if got := c.AdjustTargetAltitude(-0.05); math.Abs(got-0.95) > eps {
		t.Errorf("expected 0.95, got %f", got)
	}

	if err := c.SetParam("RollP", 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.GetParams()["RollP"] != 40 {
		t.Error("RollP not updated")
	}
	if err := c.SetParam("Nope", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if err := c.SetParam("Target", math.NaN()); err == nil {
		t.Error("expected error for NaN")
	}

	want := Actuate(Sample{Roll: level}, Disturbance{}, c.Constants(), c.TargetAltitude())
	if got := c.Actuate(Sample{Roll: level}, Disturbance{}); got != want {
		t.Errorf("controller should delegate to Actuate: %+v != %+v", got, want)
	}
}
