package analysis

import (
	"context"
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Sampler runs a model at one parameter value and returns the late-time
// values to plot, e.g. the local extrema of a state component.
type Sampler func(ctx context.Context, param float64) ([]float64, error)

// Bifurcation runs sample for steps parameter values spanning [lo, hi] on
// up to workers goroutines. Values closer than resolution collapse to one.
func Bifurcation(ctx context.Context, lo, hi float64, steps, workers int, resolution float64, sample Sampler) ([]BifurcationPoint, error) {
	if steps < 2 {
		steps = 2
	}
	if resolution <= 0 {
		resolution = 1e-3
	}

	out := make([]BifurcationPoint, steps)
	err := dynamo.ParallelFor(ctx, steps, workers, func(ctx context.Context, i int) error {
		param := lo + float64(i)*(hi-lo)/float64(steps-1)
		values, err := sample(ctx, param)
		if err != nil {
			return err
		}
		out[i] = BifurcationPoint{Param: param, Values: distinct(values, resolution)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func distinct(values []float64, resolution float64) []float64 {
	seen := make(map[int64]bool, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		key := int64(math.Round(v / resolution))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// LocalExtrema returns the interior samples that are strict local maxima or
// minima of series.
func LocalExtrema(series []float64) []float64 {
	var out []float64
	for i := 1; i+1 < len(series); i++ {
		a, b, c := series[i-1], series[i], series[i+1]
		if (b > a && b > c) || (b < a && b < c) {
			out = append(out, b)
		}
	}
	return out
}

func BifurcationASCII(data []BifurcationPoint, width, height int) string {
	var p Portrait
	for _, bp := range data {
		for _, v := range bp.Values {
			p.Points = append(p.Points, Point{X: bp.Param, Y: v})
		}
	}
	return p.ASCII(width, height)
}
