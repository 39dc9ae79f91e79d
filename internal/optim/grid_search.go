// Package optim tunes the stabilization constants by flying candidates.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"runtime"

	"github.com/san-kum/quadsim/internal/host"
)

// GridSearch flies every combination of controller parameter values and
// keeps the one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters with %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}, nil
}

// SetWorkers caps how many candidates fly at once.
func (g *GridSearch) SetWorkers(n int) { g.workers = n }

// Trial is one candidate and how it scored.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search builds a fresh flight per candidate, applies the candidate through
// the vehicle controller's SetParam, and flies it with cfg. Candidates whose
// flight fails or lacks metricName are reported in trials but never win.
func (g *GridSearch) Search(
	ctx context.Context,
	build func() (host.Flight, error),
	cfg host.RunConfig,
	metricName string,
) (Trial, []Trial, error) {
	var candidates []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &candidates)

	batch := host.NewBatch(len(candidates), func(i int) (host.Flight, error) {
		f, err := build()
		if err != nil {
			return f, err
		}
		for name, v := range candidates[i] {
			if err := f.Vehicle.Controller().SetParam(name, v); err != nil {
				return host.Flight{}, err
			}
		}
		return f, nil
	})
	batch.SetLimit(g.workers)
	results, runErr := batch.Run(ctx, cfg)

	trials := make([]Trial, len(candidates))
	best := Trial{Value: math.Inf(1)}
	for i, res := range results {
		trials[i].Params = candidates[i]
		switch {
		case res == nil:
			trials[i].Err = errors.New("optim: flight failed")
			continue
		case len(res.Errors) > 0:
			trials[i].Err = errors.Join(res.Errors...)
			continue
		}
		val, ok := res.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			trials[i].Err = fmt.Errorf("optim: no %s metric", metricName)
			continue
		}
		trials[i].Value = val
		if val < best.Value {
			best = trials[i]
		}
	}

	if best.Params == nil {
		return best, trials, errors.Join(errors.New("optim: no candidate flew"), runErr)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val
		g.searchRecursive(depth+1, newParams, out)
	}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
