package evaporation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

var ErrTooFewSteps = errors.New("evaporation: at least two grid points are required")

const (
	DefaultSteps            = 2000
	DefaultFullQuantumSteps = 3000
	DefaultAlpha            = 4.0
	DefaultGamma            = 1.0
	DefaultRecycleDuration  = 0.25

	// fullQuantumWindow stretches the grid past tau0 so the remnant plateau shows.
	fullQuantumWindow = 1.3
	// remnantBand is the relative band above M_rem counted as "at the remnant".
	remnantBand = 1.01
)

// Series is a sampled evaporation history. All slices share one length.
type Series struct {
	Times            []float64 `json:"t"`
	Mass             []float64 `json:"mass"`
	Temperature      []float64 `json:"temperature"`
	Entropy          []float64 `json:"entropy"`
	RadiationEntropy []float64 `json:"radiation_entropy"`
}

func (s Series) Len() int { return len(s.Times) }

func (s Series) truncate(n int) Series {
	if n >= len(s.Times) {
		return s
	}
	return Series{
		Times:            s.Times[:n],
		Mass:             s.Mass[:n],
		Temperature:      s.Temperature[:n],
		Entropy:          s.Entropy[:n],
		RadiationEntropy: s.RadiationEntropy[:n],
	}
}

type SemiclassicalRun struct {
	Series
	Tau float64 `json:"tau"`
}

type QuantizedRun struct {
	Series
	Tau0           float64 `json:"tau0"`
	TauEff         float64 `json:"tau_eff"`
	RemnantEntropy float64 `json:"remnant_entropy"`
	RemnantIndex   int     `json:"remnant_index"`
}

// Params configures the quantized runs. Zero values take the defaults
// listed above; RemnantMass 0 means the Planck mass.
type Params struct {
	Steps       int     `yaml:"steps" json:"steps"`
	RemnantMass float64 `yaml:"remnant_mass" json:"remnant_mass"`
	Alpha       float64 `yaml:"alpha" json:"alpha"`
	Gamma       float64 `yaml:"gamma" json:"gamma"`

	Recycle         bool    `yaml:"recycle" json:"recycle"`
	RecycleStart    float64 `yaml:"recycle_start" json:"recycle_start"`
	RecycleDuration float64 `yaml:"recycle_duration" json:"recycle_duration"`
	RecycleRate     float64 `yaml:"recycle_rate" json:"recycle_rate"`

	// KeepTail returns the whole grid instead of cutting at the remnant index.
	KeepTail bool `yaml:"keep_tail" json:"keep_tail"`
}

func DefaultParams() Params {
	return Params{
		Steps:           DefaultSteps,
		Alpha:           DefaultAlpha,
		Gamma:           DefaultGamma,
		RecycleDuration: DefaultRecycleDuration,
	}
}

func (p Params) withDefaults(planckMass float64) Params {
	if p.Steps == 0 {
		p.Steps = DefaultSteps
	}
	if p.RemnantMass == 0 {
		p.RemnantMass = planckMass
	}
	if p.Alpha == 0 {
		p.Alpha = DefaultAlpha
	}
	if p.Recycle && p.RecycleDuration == 0 {
		p.RecycleDuration = DefaultRecycleDuration
	}
	return p
}

type Evaporator struct {
	bh  blackhole.Calc
	log *zap.Logger
}

type Option func(*Evaporator)

func WithLogger(l *zap.Logger) Option {
	return func(e *Evaporator) {
		if l != nil {
			e.log = l
		}
	}
}

func New(bh blackhole.Calc, opts ...Option) *Evaporator {
	e := &Evaporator{bh: bh, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaporator) Calc() blackhole.Calc { return e.bh }

// Semiclassical samples M(t) = M0 (1 - t/tau)^(1/3) on n points over [0, tau].
func (e *Evaporator) Semiclassical(m0 float64, n int) (*SemiclassicalRun, error) {
	if err := e.bh.Validate(m0); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSteps, n)
	}

	tau := e.bh.Lifetime(m0)
	s := newSeries(n)
	s0 := e.bh.Entropy(m0)
	for i := 0; i < n; i++ {
		t := tau * float64(i) / float64(n-1)
		m := m0 * math.Cbrt(math.Max(1-t/tau, 0))
		s.Times[i] = t
		s.Mass[i] = m
		s.Temperature[i] = e.bh.HawkingTemperature(m)
		s.Entropy[i] = e.bh.Entropy(m)
		s.RadiationEntropy[i] = InformationLoss(t, tau, s0, 0)
	}
	return &SemiclassicalRun{Series: s, Tau: tau}, nil
}

// Quantized integrates the smoothed law down to the remnant floor with the
// temperature capped at hbar/(kB t_P) and a linear Page closure.
func (e *Evaporator) Quantized(ctx context.Context, m0 float64, p Params) (*QuantizedRun, error) {
	if err := e.bh.Validate(m0); err != nil {
		return nil, err
	}
	p = p.withDefaults(e.bh.K.PlanckMass())
	if p.Steps < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSteps, p.Steps)
	}

	tau0 := e.bh.Lifetime(m0)
	end := tau0
	sys := NewSmoothedHawking(e.bh, p.Alpha, p.Gamma, p.RemnantMass)
	if p.Recycle {
		end = tau0 * (1 + math.Max(p.RecycleDuration, 0))
		if p.RecycleRate > 0 {
			sys.RecycleRate = p.RecycleRate
			sys.RecycleStart = tau0 + math.Max(p.RecycleStart, 0)*tau0
			sys.RecycleEnd = sys.RecycleStart + math.Max(p.RecycleDuration, 0)*tau0
		}
	}

	run, err := e.integrate(ctx, sys, m0, end, p.Steps, e.bh.K.PlanckTemperatureCap())
	if err != nil {
		return nil, err
	}
	run.Tau0 = tau0
	dt := end / float64(p.Steps-1)
	run.RemnantIndex = remnantIndex(run.Mass, sys.RemnantMass, func(m float64) float64 {
		return m + sys.MassLossRate(m)*dt
	})
	run.TauEff = run.Times[run.RemnantIndex]
	run.RemnantEntropy = e.bh.Entropy(sys.RemnantMass)
	run.fillRadiation(e.bh.Entropy(m0), LinearPage)

	if !p.KeepTail {
		run.Series = run.Series.truncate(run.RemnantIndex + 1)
	}

	e.log.Debug("quantized evaporation",
		zap.Float64("m0", m0),
		zap.Float64("alpha", p.Alpha),
		zap.Float64("tau0", tau0),
		zap.Float64("tau_eff", run.TauEff),
		zap.Int("remnant_index", run.RemnantIndex))
	return run, nil
}

// FullQuantum runs the smoothed law over 1.3 tau0 with the temperature
// capped at Z/(sigma_P kB) and an exponential Page return. The series is
// not cut.
func (e *Evaporator) FullQuantum(ctx context.Context, m0 float64, n int) (*QuantizedRun, error) {
	if err := e.bh.Validate(m0); err != nil {
		return nil, err
	}
	if n == 0 {
		n = DefaultFullQuantumSteps
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSteps, n)
	}

	k := e.bh.K
	tau0 := e.bh.Lifetime(m0)
	sys := NewSmoothedHawking(e.bh, DefaultAlpha, DefaultGamma, k.PlanckMass())
	tcap := k.InteractionQuantum() / (k.SigmaP() * k.KB)

	run, err := e.integrate(ctx, sys, m0, fullQuantumWindow*tau0, n, tcap)
	if err != nil {
		return nil, err
	}
	run.Tau0 = tau0
	run.RemnantIndex = len(run.Mass) - 1
	for i, m := range run.Mass {
		if m <= remnantBand*sys.RemnantMass {
			if i > 0 {
				run.RemnantIndex = i
			}
			break
		}
	}
	run.TauEff = run.Times[run.RemnantIndex]
	run.RemnantEntropy = e.bh.Entropy(sys.RemnantMass)
	run.fillRadiation(e.bh.Entropy(m0), ExponentialPage)
	return run, nil
}

// integrate steps sys with forward Euler on n uniform points over [0, end].
func (e *Evaporator) integrate(ctx context.Context, sys *SmoothedHawking, m0, end float64, n int, tcap float64) (*QuantizedRun, error) {
	sim := dynamo.New(sys, integrators.NewEuler(), nil,
		dynamo.WithProjector(sys),
		dynamo.WithLogger(e.log))

	cfg := dynamo.DefaultConfig()
	cfg.Dt = end / float64(n-1)
	cfg.Duration = end
	res, err := sim.Run(ctx, dynamo.State{m0}, cfg)
	if err != nil {
		return nil, fmt.Errorf("evaporation: integrate: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("evaporation: integrate: %w", res.Errors[0])
	}

	s := newSeries(0)
	s.Times = res.Times
	s.Mass = dynamo.Column(res.States, 0)
	s.Temperature = make([]float64, len(s.Mass))
	s.Entropy = make([]float64, len(s.Mass))
	s.RadiationEntropy = make([]float64, len(s.Mass))
	for i, m := range s.Mass {
		s.Temperature[i] = math.Min(e.bh.HawkingTemperature(m), tcap)
		s.Entropy[i] = e.bh.Entropy(m)
	}
	return &QuantizedRun{Series: s}, nil
}

func (r *QuantizedRun) fillRadiation(s0 float64, closure Closure) {
	for i, t := range r.Times {
		r.RadiationEntropy[i] = closure(t, r.TauEff, s0, r.RemnantEntropy)
	}
}

// remnantIndex is the last grid index whose Euler step lands on the
// floor, so a recycled core that evaporates again moves it forward. A run
// that never lands uses the first index already at the floor, then the
// last index.
func remnantIndex(mass []float64, remnant float64, next func(m float64) float64) int {
	idx, first := -1, -1
	for i, m := range mass {
		if m > remnant {
			if next(m) <= remnant {
				idx = i
			}
		} else if first < 0 {
			first = i
		}
	}
	switch {
	case idx >= 0:
		return idx
	case first >= 0:
		return first
	}
	return len(mass) - 1
}

func newSeries(n int) Series {
	return Series{
		Times:            make([]float64, n),
		Mass:             make([]float64, n),
		Temperature:      make([]float64, n),
		Entropy:          make([]float64, n),
		RadiationEntropy: make([]float64, n),
	}
}
