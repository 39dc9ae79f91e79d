package battery

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	b, err := New(DJI())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Remaining() != 1 {
		t.Errorf("expected full battery, got %f", b.Remaining())
	}
	if math.Abs(b.CapacityJoules()-59.29*3600) > 1e-6 {
		t.Errorf("expected %f J, got %f", 59.29*3600, b.CapacityJoules())
	}
	if b.SafeLandingThreshold() != 0.1 {
		t.Errorf("expected threshold 0.1, got %f", b.SafeLandingThreshold())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Spec)
	}{
		{"zero energy", func(s *Spec) { s.EnergyWh = 0 }},
		{"nan energy", func(s *Spec) { s.EnergyWh = math.NaN() }},
		{"threshold one", func(s *Spec) { s.SafeLanding = 1 }},
		{"negative threshold", func(s *Spec) { s.SafeLanding = -0.1 }},
		{"negative voltage", func(s *Spec) { s.Voltage = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DJI()
			tt.mod(&s)
			if _, err := New(s); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUpdate_Monotonic(t *testing.T) {
	b, _ := New(DJI())
	prev := b.Remaining()
	for consumed := 0.0; consumed < b.CapacityJoules()*1.5; consumed += 5000 {
		got := b.Update(consumed)
		if got > prev {
			t.Fatalf("remaining rose from %f to %f at %f J", prev, got, consumed)
		}
		prev = got
	}
	if b.Remaining() >= 0 {
		t.Errorf("remaining should go negative past empty, got %f", b.Remaining())
	}
	if b.Percent() != 0 {
		t.Errorf("percent should clamp at 0, got %f", b.Percent())
	}
}

func TestUpdate_Fraction(t *testing.T) {
	b, _ := New(DJI())
	got := b.Update(b.CapacityJoules() * 0.25)
	if math.Abs(got-0.75) > 1e-12 {
		t.Errorf("expected 0.75, got %f", got)
	}
	if math.Abs(b.Percent()-75) > 1e-9 {
		t.Errorf("expected 75%%, got %f", b.Percent())
	}
}

func TestEstimatedHoverTime(t *testing.T) {
	b, _ := New(DJI())
	full := b.EstimatedHoverTime(95.02)
	if full < 29*60 || full > 40*60 {
		t.Errorf("full pack hover estimate out of range: %fs", full)
	}
	b.Update(b.CapacityJoules() * 2)
	if b.EstimatedHoverTime(95.02) != 0 {
		t.Error("empty pack should have no hover time")
	}
	if !math.IsInf(b.EstimatedHoverTime(0), 1) {
		t.Error("zero draw should last forever")
	}
	b.Reset()
	if b.Remaining() != 1 || b.Consumed() != 0 {
		t.Error("reset should refill")
	}
}
