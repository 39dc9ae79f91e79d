package host

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/quadsim/internal/vehicle"
)

// Flight is one vehicle flying on its own host.
type Flight struct {
	Host    *Host
	Vehicle *vehicle.Vehicle
}

// Batch runs independent flights concurrently. Flights share nothing, so
// each one is built fresh by the factory.
type Batch struct {
	n     int
	limit int
	build func(i int) (Flight, error)
}

func NewBatch(n int, build func(i int) (Flight, error)) *Batch {
	return &Batch{n: n, build: build}
}

// SetLimit caps how many flights run at once. Zero or less means no cap.
func (b *Batch) SetLimit(n int) { b.limit = n }

func (b *Batch) Len() int { return b.n }

// Run flies every flight with cfg. Results keep the factory's order; a
// flight that failed leaves a nil entry and its error in the joined error.
func (b *Batch) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, b.n)
	errs := make([]error, b.n)

	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i := 0; i < b.n; i++ {
		g.Go(func() error {
			f, err := b.build(i)
			if err != nil {
				errs[i] = fmt.Errorf("flight %d: %w", i, err)
				return nil
			}
			res, err := f.Host.Run(ctx, f.Vehicle, cfg)
			if err != nil {
				errs[i] = fmt.Errorf("flight %d: %w", i, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	return results, errors.Join(errs...)
}
