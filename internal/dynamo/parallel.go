package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor calls fn for every index in [0, n) on at most workers
// goroutines. workers <= 0 means GOMAXPROCS. The first error cancels the
// context handed to the remaining calls and is returned.
func ParallelFor(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, idx)
		})
	}

	return g.Wait()
}

// Ensemble runs one simulation per initial state concurrently. Integrators
// keep scratch buffers, so every run gets a fresh simulator from build.
type Ensemble struct {
	build   func() *Simulator
	workers int
}

func NewEnsemble(build func() *Simulator, workers int) *Ensemble {
	return &Ensemble{build: build, workers: workers}
}

func (e *Ensemble) Run(ctx context.Context, inits []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(inits))

	err := ParallelFor(ctx, len(inits), e.workers, func(ctx context.Context, i int) error {
		runCfg := cfg
		runCfg.Seed = cfg.Seed + int64(i)

		res, err := e.build().Run(ctx, inits[i], runCfg)
		if err != nil {
			return err
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
