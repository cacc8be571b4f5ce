package dynamo

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"
)

func TestParallelFor(t *testing.T) {
	defer goleak.VerifyNone(t)

	var sum atomic.Int64
	err := ParallelFor(context.Background(), 100, 4, func(ctx context.Context, i int) error {
		sum.Add(int64(i))
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelFor failed: %v", err)
	}
	if sum.Load() != 4950 {
		t.Errorf("sum = %d, want 4950", sum.Load())
	}
}

func TestParallelForFirstError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	err := ParallelFor(context.Background(), 10, 2, func(ctx context.Context, i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	defer goleak.VerifyNone(t)

	ens := NewEnsemble(func() *Simulator { return New(&decay{}, &eulerStep{}, nil) }, 2)
	inits := []State{{1}, {2}, {4}}

	results, err := ens.Run(context.Background(), inits, Config{Dt: 0.01, Duration: 1})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i, r := range results {
		ratio := r.Final()[0] / inits[i][0]
		if math.Abs(ratio-results[0].Final()[0]) > 1e-12 {
			t.Errorf("run %d not linear in x0: ratio %f", i, ratio)
		}
	}
}
