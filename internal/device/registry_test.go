package device

import (
	"errors"
	"strings"
	"testing"
)

type fakeIMU struct{}

func (fakeIMU) RollPitchYaw() (float64, float64, float64) { return 0, 0, 0 }

type fakeGPS struct{}

func (fakeGPS) Position() (float64, float64, float64) { return 0, 0, 0 }

type fakeGyro struct{}

func (fakeGyro) AngularVelocity() (float64, float64, float64) { return 0, 0, 0 }

type fakeMotor struct{ name string }

func (*fakeMotor) SetVelocity(float64) {}
func (*fakeMotor) SetPosition(float64) {}

type fakeRadar struct{}

func (fakeRadar) Targets() []RadarTarget { return nil }

func fullSet() []Binding {
	bs := []Binding{
		{Descriptor{KindInertialUnit, "inertial unit", RoleNone}, fakeIMU{}},
		{Descriptor{KindGPS, "gps", RoleNone}, fakeGPS{}},
		{Descriptor{KindGyro, "gyro", RoleNone}, fakeGyro{}},
	}
	for _, axis := range CameraAxes {
		name := "camera " + axis.String()
		bs = append(bs, Binding{Descriptor{KindCameraMotor, name, axis}, &fakeMotor{name}})
	}
	for _, corner := range Corners {
		name := corner.String() + " propeller"
		bs = append(bs, Binding{Descriptor{KindPropeller, name, corner}, &fakeMotor{name}})
	}
	return bs
}

func without(bs []Binding, kind Kind) []Binding {
	var out []Binding
	for _, b := range bs {
		if b.Kind != kind {
			out = append(out, b)
		}
	}
	return out
}

func TestBind(t *testing.T) {
	reg, err := Bind(Required(), fullSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.InertialUnit() == nil || reg.GPS() == nil || reg.Gyro() == nil {
		t.Error("sensors should be bound")
	}
	for _, axis := range CameraAxes {
		if reg.CameraMotor(axis) == nil {
			t.Errorf("camera %s motor not bound", axis)
		}
	}
	for _, corner := range Corners {
		if reg.Propeller(corner) == nil {
			t.Errorf("%s propeller not bound", corner)
		}
	}
	if reg.Len() != 10 {
		t.Errorf("expected 10 devices, got %d", reg.Len())
	}
	if _, ok := reg.Radar(); ok {
		t.Error("radar should be absent")
	}
}

func TestBind_MissingGPS(t *testing.T) {
	reg, err := Bind(Required(), without(fullSet(), KindGPS))
	if reg != nil {
		t.Error("expected no registry on failure")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var missing *MissingDeviceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDeviceError, got %T", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0].Kind != KindGPS {
		t.Errorf("expected only GPS missing, got %v", missing.Missing)
	}
	if !strings.Contains(err.Error(), "GPS") {
		t.Errorf("error should name GPS: %q", err.Error())
	}
}

func TestBind_ReportsEveryMissing(t *testing.T) {
	provided := without(without(fullSet(), KindGPS), KindPropeller)
	_, err := Bind(Required(), provided)

	var missing *MissingDeviceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDeviceError, got %v", err)
	}
	want := []string{"GPS", "front left propeller", "front right propeller", "rear left propeller", "rear right propeller"}
	if len(missing.Missing) != len(want) {
		t.Fatalf("expected %d missing, got %v", len(want), missing.Missing)
	}
	for i, w := range want {
		if got := missing.Missing[i].String(); got != w {
			t.Errorf("missing[%d]: expected %q, got %q", i, w, got)
		}
	}
}

func TestBind_ExtrasRetained(t *testing.T) {
	spare := &fakeMotor{"spare"}
	provided := append(fullSet(),
		Binding{Descriptor{KindPropeller, "spare", RoleFrontLeft}, spare},
		Binding{Descriptor{KindRadar, "radar", RoleNone}, fakeRadar{}},
		Binding{Descriptor{KindCamera, "camera", RoleNone}, nil},
	)
	reg, err := Bind(Required(), provided)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Propeller(RoleFrontLeft) == Motor(spare) {
		t.Error("first propeller for a corner should win")
	}
	if b, ok := reg.Lookup("spare"); !ok || b.Handle != spare {
		t.Error("extra propeller should be retained")
	}
	if got := len(reg.OfKind(KindPropeller)); got != 5 {
		t.Errorf("expected 5 propellers, got %d", got)
	}
	if _, ok := reg.Radar(); !ok {
		t.Error("radar should be available")
	}
	names := reg.Names()
	if names[len(names)-1] != "camera" {
		t.Errorf("names should keep provided order, got %v", names)
	}
}

func TestBind_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		binding Binding
		reason  string
	}{
		{"empty name", Binding{Descriptor{KindLED, "", RoleNone}, nil}, "empty device name"},
		{"wrong handle", Binding{Descriptor{KindRadar, "radar", RoleNone}, fakeIMU{}}, "does not implement"},
		{"propeller without corner", Binding{Descriptor{KindPropeller, "p", RoleCameraRoll}, &fakeMotor{}}, "corner"},
		{"camera motor without axis", Binding{Descriptor{KindCameraMotor, "c", RoleNone}, &fakeMotor{}}, "axis"},
		{"sensor with role", Binding{Descriptor{KindCompass, "compass", RoleFrontLeft}, nil}, "mounting role"},
		{"unknown kind", Binding{Descriptor{Kind(99), "x", RoleNone}, nil}, "unknown"},
		{"duplicate name", Binding{Descriptor{KindRadar, "gps", RoleNone}, fakeRadar{}}, "duplicate"},
		{"gyro bound as gps", Binding{Descriptor{KindGPS, "gps 2", RoleNone}, fakeGyro{}}, "does not implement"},
		{"gps bound as gyro", Binding{Descriptor{KindGyro, "gyro 2", RoleNone}, fakeGPS{}}, "does not implement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(Required(), append(fullSet(), tt.binding))
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var invalid *InvalidDeviceError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidDeviceError, got %T", err)
			}
			if !strings.Contains(invalid.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, invalid.Reason)
			}
		})
	}
}

func TestBind_SwappedSensors(t *testing.T) {
	bs := fullSet()
	for i, b := range bs {
		switch b.Kind {
		case KindGPS:
			bs[i].Handle = fakeGyro{}
		case KindGyro:
			bs[i].Handle = fakeGPS{}
		}
	}
	reg, err := Bind(Required(), bs)
	if reg != nil {
		t.Error("expected no registry")
	}
	var missing *MissingDeviceError
	if !errors.As(err, &missing) || len(missing.Missing) != 2 {
		t.Fatalf("expected gps and gyro missing, got %v", err)
	}
	if n := strings.Count(err.Error(), "does not implement"); n != 2 {
		t.Errorf("expected two type errors, got %d in %v", n, err)
	}
}

func TestKindClass(t *testing.T) {
	tests := []struct {
		kind  Kind
		class Class
	}{
		{KindGPS, ClassSensor},
		{KindKeyboard, ClassSensor},
		{KindLED, ClassActuator},
		{KindEmitter, ClassActuator},
		{KindPropeller, ClassMotor},
		{KindCameraMotor, ClassMotor},
		{Kind(0), 0},
	}
	for _, tt := range tests {
		if got := tt.kind.Class(); got != tt.class {
			t.Errorf("%s: expected %v, got %v", tt.kind, tt.class, got)
		}
	}
}
