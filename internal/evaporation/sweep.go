package evaporation

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/qinfo"
)

var DefaultAlphas = []float64{1, 2, 4, 8}

type SweepPoint struct {
	Alpha float64       `json:"alpha"`
	Run   *QuantizedRun `json:"run"`
}

// AlphaSweep runs Quantized once per alpha on a bounded worker pool. The
// result keeps the order of alphas. Recycling is never applied in a sweep.
func (e *Evaporator) AlphaSweep(ctx context.Context, m0 float64, alphas []float64, p Params) ([]SweepPoint, error) {
	if len(alphas) == 0 {
		alphas = DefaultAlphas
	}
	p.Recycle = false

	out := make([]SweepPoint, len(alphas))
	err := dynamo.ParallelFor(ctx, len(alphas), 0, func(ctx context.Context, i int) error {
		q := p
		q.Alpha = alphas[i]
		run, err := e.Quantized(ctx, m0, q)
		if err != nil {
			return err
		}
		out[i] = SweepPoint{Alpha: alphas[i], Run: run}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type CycleParams struct {
	Params `yaml:",inline"`

	Cycles  int `yaml:"cycles" json:"cycles"`
	QMSteps int `yaml:"qm_steps" json:"qm_steps"`
	// StartMass > 0 restarts every cycle from max(StartMass, M_rem);
	// otherwise cycles restart at the remnant.
	StartMass float64 `yaml:"start_mass" json:"start_mass"`
}

func DefaultCycleParams() CycleParams {
	return CycleParams{Params: DefaultParams(), Cycles: 3, QMSteps: 128}
}

type Cycle struct {
	Index int             `json:"cycle_index"`
	Run   *QuantizedRun   `json:"run"`
	QM    qinfo.PageCurve `json:"qm"`
}

// RemnantCycles treats M_rem as a persistent core: each cycle reloads it,
// evaporates it again and pairs the run with the unitary qubit Page toy.
func (e *Evaporator) RemnantCycles(ctx context.Context, mrem float64, cp CycleParams) ([]Cycle, error) {
	mrem = math.Max(math.Abs(mrem), 1e-99)
	start := mrem
	if cp.StartMass > 0 {
		start = math.Max(cp.StartMass, mrem)
	}
	if cp.QMSteps == 0 {
		cp.QMSteps = 128
	}

	p := cp.Params
	p.RemnantMass = mrem

	n := max(cp.Cycles, 0)
	cycles := make([]Cycle, 0, n)
	for i := 0; i < n; i++ {
		run, err := e.Quantized(ctx, start, p)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, Cycle{
			Index: i,
			Run:   run,
			QM:    qinfo.QubitPageCurve(cp.QMSteps),
		})
		e.log.Debug("remnant cycle",
			zap.Int("cycle", i),
			zap.Float64("start_mass", start),
			zap.Float64("tau_eff", run.TauEff))
	}
	return cycles, nil
}
