package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/metrics"
)

func hoverFlight() (host.Flight, error) {
	cfg := config.GetPreset("hover")
	f, err := cfg.Build("tune", zerolog.Nop())
	if err != nil {
		return f, err
	}
	k := cfg.Vehicle.Constants
	for _, m := range metrics.Default(k.VerticalThrust, k.VerticalOffset) {
		f.Host.AddMetric(m)
	}
	return f, nil
}

func TestNewGridSearch_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"no params", nil, nil},
		{"mismatch", []string{"RollP"}, nil},
		{"empty range", []string{"RollP"}, [][]float64{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	g, err := NewGridSearch([]string{"RollP", "PitchP"}, [][]float64{{1, 2, 3}, {4, 5}})
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]float64
	g.searchRecursive(0, map[string]float64{}, &got)
	if len(got) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(got))
	}
	if got[0]["RollP"] != 1 || got[0]["PitchP"] != 4 || got[5]["RollP"] != 3 || got[5]["PitchP"] != 5 {
		t.Errorf("unexpected order %v", got)
	}
}

func TestSearch_VerticalGain(t *testing.T) {
	g, err := NewGridSearch([]string{"VerticalP"}, [][]float64{{0, 3}})
	if err != nil {
		t.Fatal(err)
	}
	cfg := host.RunConfig{Dt: 0.01, Duration: 20, WarmUp: host.DefaultWarmUp}

	best, trials, err := g.Search(context.Background(), hoverFlight, cfg, "altitude_rms")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(trials))
	}
	// Without the vertical term the propellers only balance gravity and the
	// vehicle never leaves the ground.
	if best.Params["VerticalP"] != 3 {
		t.Errorf("expected the altitude loop to win, got %v (trials %+v)", best.Params, trials)
	}
	if best.Value >= trials[0].Value {
		t.Errorf("best %f should beat %f", best.Value, trials[0].Value)
	}
}

func TestSearch_Failures(t *testing.T) {
	g, _ := NewGridSearch([]string{"Nope"}, [][]float64{{1}})
	cfg := host.RunConfig{Dt: 0.01, Duration: 1}

	_, trials, err := g.Search(context.Background(), hoverFlight, cfg, "altitude_rms")
	if err == nil || trials[0].Err == nil {
		t.Error("unknown parameter should fail the candidate")
	}

	g, _ = NewGridSearch([]string{"RollP"}, [][]float64{{50}})
	_, _, err = g.Search(context.Background(), hoverFlight, cfg, "missing")
	if err == nil {
		t.Error("missing metric should fail the search")
	}

	g.SetWorkers(1)
	boom := errors.New("no airframe")
	_, _, err = g.Search(context.Background(), func() (host.Flight, error) { return host.Flight{}, boom }, cfg, "altitude_rms")
	if !errors.Is(err, boom) {
		t.Errorf("expected the build error, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(1, 2, 5)
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if v := Linspace(3, 9, 1); len(v) != 1 || v[0] != 3 {
		t.Errorf("single point should be lo, got %v", v)
	}
}
