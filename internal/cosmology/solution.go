package cosmology

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sigmalab/internal/analysis"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

var ErrNoSamples = errors.New("cosmology: solution has no samples")

const (
	// Tolerance is the relative tolerance of the adaptive solve.
	Tolerance = 1e-8
	// MpcKm is one megaparsec in km, for converting km/s/Mpc to 1/s.
	MpcKm = 3.086e19
)

// Solution holds the state sampled exactly at the requested times.
type Solution struct {
	P     Params    `json:"params"`
	Times []float64 `json:"t"`
	A     []float64 `json:"a"`
	H     []float64 `json:"h"`
	T     []float64 `json:"temperature"`
}

func (s *Solution) Len() int { return len(s.Times) }

// Simulate integrates from x0 over [t0, t1] with adaptive Dormand-Prince and
// returns n uniformly spaced samples including both ends.
func (m *Model) Simulate(ctx context.Context, t0, t1 float64, x0 dynamo.State, n int, log *zap.Logger) (*Solution, error) {
	if n < 2 || !(t1 > t0) {
		return nil, fmt.Errorf("%w: need t1 > t0 and at least two samples", dynamo.ErrInvalidConfig)
	}
	if x0 == nil {
		x0 = DefaultInitial()
	}
	if log == nil {
		log = zap.NewNop()
	}

	times := floats.Span(make([]float64, n), t0, t1)
	sim := dynamo.New(m, integrators.NewRK45(), nil, dynamo.WithLogger(log))

	cfg := dynamo.DefaultConfig()
	cfg.Dt = (t1 - t0) / float64(n-1)
	cfg.Tolerance = Tolerance
	cfg.MinDt = 1e-12
	cfg.MaxDt = 1

	res, err := sim.RunAt(ctx, x0, times, cfg)
	if err != nil {
		return nil, fmt.Errorf("cosmology: integration failed: %w", err)
	}

	log.Debug("cosmology solved",
		zap.Int("samples", n),
		zap.Int("steps", res.StepsTaken),
		zap.Int("rejected", res.Rejected))

	return &Solution{
		P:     m.P,
		Times: res.Times,
		A:     dynamo.Column(res.States, 0),
		H:     dynamo.Column(res.States, 1),
		T:     dynamo.Column(res.States, 2),
	}, nil
}

func (s *Solution) PhysicalH() []float64 {
	out := make([]float64, len(s.H))
	for i, h := range s.H {
		out[i] = s.P.PhysicalH(h)
	}
	return out
}

func (s *Solution) Entropy() []float64 {
	out := make([]float64, len(s.A))
	for i, a := range s.A {
		out[i] = s.P.Entropy(a)
	}
	return out
}

func (s *Solution) EquationOfState() []float64 {
	out := make([]float64, len(s.T))
	for i, temp := range s.T {
		out[i] = EquationOfState(temp, s.P.TCritical, s.P.Alpha)
	}
	return out
}

// phaseMeans averages f(H_phys) over hot and cold samples.
func (s *Solution) phaseMeans(f func(float64) float64) (hot, cold float64, nHot, nCold int) {
	var hotVals, coldVals []float64
	for i, h := range s.PhysicalH() {
		if s.P.Phase(s.T[i]) == Expansion {
			hotVals = append(hotVals, f(h))
		} else {
			coldVals = append(coldVals, f(h))
		}
	}
	if len(hotVals) > 0 {
		hot = stat.Mean(hotVals, nil)
	}
	if len(coldVals) > 0 {
		cold = stat.Mean(coldVals, nil)
	}
	return hot, cold, len(hotVals), len(coldVals)
}

type TensionReport struct {
	HExpansion        float64 `json:"h_expansion"`
	HDeflation        float64 `json:"h_deflation"`
	HMean             float64 `json:"h_mean"`
	Tension           float64 `json:"tension"`
	ExpansionFraction float64 `json:"expansion_fraction"`
	HExpansionSigned  float64 `json:"h_expansion_signed"`
	HDeflationSigned  float64 `json:"h_deflation_signed"`
}

// Analyze reports phase means of |H| in km/s/Mpc. An empty phase reports 0.
func (s *Solution) Analyze() (TensionReport, error) {
	if s.Len() == 0 {
		return TensionReport{}, ErrNoSamples
	}
	hot, cold, nHot, _ := s.phaseMeans(math.Abs)
	hotSigned, coldSigned, _, _ := s.phaseMeans(func(h float64) float64 { return h })

	abs := s.PhysicalH()
	for i := range abs {
		abs[i] = math.Abs(abs[i])
	}
	return TensionReport{
		HExpansion:        hot,
		HDeflation:        cold,
		HMean:             stat.Mean(abs, nil),
		Tension:           math.Abs(hot - cold),
		ExpansionFraction: float64(nHot) / float64(s.Len()),
		HExpansionSigned:  hotSigned,
		HDeflationSigned:  coldSigned,
	}, nil
}

// MeasuredH is a measurement operator: "CMB" averages |H| over samples
// strictly below T_c, "SNe" strictly above, anything else the whole run.
// Samples at exactly T_c belong to neither. A method with no samples
// falls back to its reference value.
func (s *Solution) MeasuredH(method string) float64 {
	if s.Len() == 0 {
		return 0
	}
	abs := s.PhysicalH()
	for i := range abs {
		abs[i] = math.Abs(abs[i])
	}

	var keep func(T float64) bool
	fallback := 0.0
	switch method {
	case "CMB":
		keep = func(T float64) bool { return T < s.P.TCritical }
		fallback = s.P.HDeflation
	case "SNe":
		keep = func(T float64) bool { return T > s.P.TCritical }
		fallback = s.P.HExpansion
	default:
		return stat.Mean(abs, nil)
	}

	var vals []float64
	for i, h := range abs {
		if keep(s.T[i]) {
			vals = append(vals, h)
		}
	}
	if len(vals) == 0 {
		return fallback
	}
	return stat.Mean(vals, nil)
}

type RedshiftCurve struct {
	Z []float64 `json:"z"`
	H []float64 `json:"h"`
	T []float64 `json:"temperature"`
}

// Redshift anchors "now" at the sample whose physical H is closest to
// targetH and keeps the samples with 0 <= z < 10, where z = a_now/a - 1.
func (s *Solution) Redshift(targetH float64) (RedshiftCurve, error) {
	if s.Len() == 0 {
		return RedshiftCurve{}, ErrNoSamples
	}
	hp := s.PhysicalH()
	now := 0
	for i, h := range hp {
		if math.Abs(h-targetH) < math.Abs(hp[now]-targetH) {
			now = i
		}
	}

	var c RedshiftCurve
	for i, a := range s.A {
		z := s.A[now]/a - 1
		if z >= 0 && z < 10 {
			c.Z = append(c.Z, z)
			c.H = append(c.H, hp[i])
			c.T = append(c.T, s.T[i])
		}
	}
	return c, nil
}

type JerkCurve struct {
	Z    []float64 `json:"z"`
	DHdz []float64 `json:"dh_dz"`
	Jerk []float64 `json:"jerk"`
}

// Jerk sorts (z, H) by z and returns dH/dz and the relative indicator
// (dH/dz) / (H + 1e-9). Repeated z values are dropped so the gradient
// stays finite.
func Jerk(z, h []float64) JerkCurve {
	zs := append([]float64(nil), z...)
	idx := make([]int, len(zs))
	floats.Argsort(zs, idx)

	var c JerkCurve
	var hs []float64
	for k, i := range idx {
		if k > 0 && zs[k] == zs[k-1] {
			continue
		}
		c.Z = append(c.Z, zs[k])
		hs = append(hs, h[i])
	}
	if len(c.Z) < 2 {
		return c
	}
	c.DHdz = analysis.Gradient(hs, c.Z)
	c.Jerk = make([]float64, len(hs))
	for i := range hs {
		c.Jerk[i] = c.DHdz[i] / (hs[i] + 1e-9)
	}
	return c
}

type SICheck struct {
	RhoPlanck float64 `json:"rho_planck"`
	KCrit     float64 `json:"k_crit"`
	Chi73     float64 `json:"chi_73"`
	Chi67     float64 `json:"chi_67"`
}

// SICrossCheck compares the curvature scale (H^2/c^2)^2 l_P^4 of both
// Hubble measurements with the Planck curvature 1/l_P^4.
func SICrossCheck(k constants.Constants, hExp, hDef float64) SICheck {
	lp := k.PlanckLength()
	lp4 := lp * lp * lp * lp
	chi := func(h float64) float64 {
		hs := h / MpcKm
		q := hs * hs / (k.C * k.C)
		return q * q * lp4
	}
	return SICheck{
		RhoPlanck: k.PlanckMass() / (lp * lp * lp),
		KCrit:     1 / lp4,
		Chi73:     chi(hExp),
		Chi67:     chi(hDef),
	}
}

// DominantPeriod is 1/f of the strongest non-zero bin of the physical H
// spectrum. It needs uniformly spaced samples.
func (s *Solution) DominantPeriod() (float64, error) {
	if s.Len() < 4 {
		return 0, ErrNoSamples
	}
	dt := s.Times[1] - s.Times[0]
	spec, err := analysis.PowerSpectrum(s.PhysicalH(), dt)
	if err != nil {
		return 0, err
	}
	f := analysis.DominantFrequency(spec)
	if f == 0 {
		return math.Inf(1), nil
	}
	return 1 / f, nil
}

// Transitions returns the times at which T rises through T_c.
func (s *Solution) Transitions() []float64 {
	tc := make([]float64, s.Len())
	sec := analysis.Section(s.T, s.Times, tc, s.P.TCritical)
	out := make([]float64, len(sec.Points))
	for i, p := range sec.Points {
		out[i] = p.X
	}
	return out
}

// Portrait is the (T, H_phys) phase-space trajectory.
func (s *Solution) Portrait() analysis.Portrait {
	return analysis.NewPortrait(s.T, s.PhysicalH())
}
