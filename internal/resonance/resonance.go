// Package resonance holds two statistical toys: a damped random walk that
// settles on the critical line Re(s) = 1/2, and GUE level spacings compared
// against the Wigner surmise.
package resonance

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sigmalab/internal/qinfo"
)

// ScalingWalk starts at a uniform draw and relaxes toward 1/2 with a pull
// of 0.1 per step while noise of amplitude 1/sqrt(i) decays.
func ScalingWalk(rng *rand.Rand, iterations int) []float64 {
	if iterations < 1 {
		return nil
	}
	s := rng.Float64()
	history := make([]float64, 0, iterations)
	history = append(history, s)

	for i := 1; i < iterations; i++ {
		noise := (rng.Float64() - 0.5) / math.Sqrt(float64(i))
		s += 0.1*(0.5-s) + noise
		history = append(history, s)
	}
	return history
}

// GUESpacings draws a size x size matrix from the Gaussian unitary ensemble
// and returns its nearest-neighbour eigenvalue spacings normalised to unit
// mean.
func GUESpacings(rng *rand.Rand, size int) ([]float64, error) {
	if size < 2 {
		return nil, fmt.Errorf("resonance: need at least 2 levels, got %d", size)
	}

	h := mat.NewCDense(size, size, nil)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			h.Set(i, j, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}

	vals, err := qinfo.HermitianEigenvalues(h)
	if err != nil {
		return nil, err
	}

	spacings := make([]float64, len(vals)-1)
	for i := range spacings {
		spacings[i] = vals[i+1] - vals[i]
	}
	mean := stat.Mean(spacings, nil)
	for i := range spacings {
		spacings[i] /= mean
	}
	return spacings, nil
}

// WignerSurmise is the GUE spacing density (32/pi^2) x^2 exp(-4x^2/pi).
func WignerSurmise(x float64) float64 {
	return 32 / (math.Pi * math.Pi) * x * x * math.Exp(-4*x*x/math.Pi)
}

// Histogram is a normalised density estimate with equal-width bins.
type Histogram struct {
	Edges   []float64 `json:"edges"`
	Density []float64 `json:"density"`
}

var ErrHistogramRange = errors.New("resonance: histogram needs at least one bin and a positive range")

// SpacingHistogram bins spacings on [0, max) into a density. Values at or
// beyond max are dropped.
func SpacingHistogram(spacings []float64, bins int, max float64) (Histogram, error) {
	if bins < 1 || !(max > 0) || math.IsInf(max, 0) {
		return Histogram{}, fmt.Errorf("%w: bins=%d max=%g", ErrHistogramRange, bins, max)
	}
	edges := make([]float64, bins+1)
	width := max / float64(bins)
	for i := range edges {
		edges[i] = float64(i) * width
	}

	kept := make([]float64, 0, len(spacings))
	for _, s := range spacings {
		if s >= 0 && s < max {
			kept = append(kept, s)
		}
	}
	sort.Float64s(kept)

	counts := stat.Histogram(nil, edges, kept, nil)
	density := make([]float64, bins)
	if len(spacings) > 0 {
		for i, c := range counts {
			density[i] = c / (float64(len(spacings)) * width)
		}
	}
	return Histogram{Edges: edges, Density: density}, nil
}
