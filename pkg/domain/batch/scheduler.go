// Package batch schedules per-unit provisioning work.
//
// Group units are processed in batches: batches run strictly one after
// another, units inside a batch run concurrently, and the layer types of
// one unit run strictly in order. The layer ordering keeps each unit to
// a single concurrent attach against the shared source service; the
// batch cap bounds how many units race it at once.
package batch

import (
	"context"
	"errors"
	"sync"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/slices"
)

// DefaultMaxGroupIteration is the default batch size.
const DefaultMaxGroupIteration = 2

// Work is invoked once per unit and layer type.
type Work func(ctx context.Context, unit domain.GroupUnit, layer domain.WelfareNeed) error

type Scheduler struct {
	// MaxGroupIteration caps how many units run concurrently in one
	// batch. Zero means DefaultMaxGroupIteration.
	MaxGroupIteration int
}

// Run executes work for every unit and layer.
//
// A unit that fails stops its own remaining layers, but units already
// running in the same batch are left to finish; there is no mid-batch
// cancellation. A batch that finished with any failure stops all
// subsequent batches, and Run returns the joined failures.
func (s Scheduler) Run(
	ctx context.Context,
	units []domain.GroupUnit,
	layers []domain.WelfareNeed,
	work Work,
) error {
	size := s.MaxGroupIteration
	if size == 0 {
		size = DefaultMaxGroupIteration
	}

	for _, batch := range slices.Batch(units, size) {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		for _, unit := range batch {
			wg.Add(1)
			go func(unit domain.GroupUnit) {
				defer wg.Done()
				for _, layer := range layers {
					if err := work(ctx, unit, layer); err != nil {
						mu.Lock()
						errs = append(errs, err)
						mu.Unlock()
						return
					}
				}
			}(unit)
		}
		wg.Wait()
		if len(errs) != 0 {
			return errors.Join(errs...)
		}
	}
	return nil
}
