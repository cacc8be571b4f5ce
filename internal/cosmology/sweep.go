package cosmology

import (
	"context"

	"github.com/san-kum/sigmalab/internal/analysis"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

// Lyapunov estimates the largest exponent of the (a, H, T) flow from x0
// with fixed-step RK4.
func (m *Model) Lyapunov(x0 dynamo.State, dt, duration float64) float64 {
	if x0 == nil {
		x0 = DefaultInitial()
	}
	return analysis.LyapunovExponent(m, integrators.NewRK4(), x0, dt, duration, 1e-8)
}

// SweepAlpha varies the equation-of-state sharpness over [lo, hi] and
// records the local extrema of the physical H over the second half of each
// run. A fixed point shows as a single value, an oscillation as several.
func (m *Model) SweepAlpha(ctx context.Context, lo, hi float64, steps int, t1 float64, n int) ([]analysis.BifurcationPoint, error) {
	sample := func(ctx context.Context, alpha float64) ([]float64, error) {
		local := NewModel(m.P)
		local.P.Alpha = alpha
		sol, err := local.Simulate(ctx, 0, t1, nil, n, nil)
		if err != nil {
			return nil, err
		}
		late := sol.PhysicalH()[sol.Len()/2:]
		ext := analysis.LocalExtrema(late)
		if len(ext) == 0 {
			ext = []float64{late[len(late)-1]}
		}
		return ext, nil
	}
	return analysis.Bifurcation(ctx, lo, hi, steps, 0, 1e-3, sample)
}
