// Package spinbrake is the spin-versus-brake toy behind the Page-curve
// picture: accretion loads mass, the mass brakes the spin, and entropy grows
// while the spin is high and drains once it has been braked.
package spinbrake

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
	"github.com/san-kum/sigmalab/internal/sigmap"
)

type Params struct {
	Duration   float64 `yaml:"duration" json:"duration"`
	Steps      int     `yaml:"steps" json:"steps"`
	Integrator string  `yaml:"integrator" json:"integrator"`

	AccretionRate   float64 `yaml:"accretion_rate" json:"accretion_rate"`
	AccretionDecay  float64 `yaml:"accretion_decay" json:"accretion_decay"`
	BrakeEfficiency float64 `yaml:"brake_efficiency" json:"brake_efficiency"`
	DriveGain       float64 `yaml:"drive_gain" json:"drive_gain"`
	DriveSoftening  float64 `yaml:"drive_softening" json:"drive_softening"`

	SpinThreshold float64 `yaml:"spin_threshold" json:"spin_threshold"`
	EntropyDrain  float64 `yaml:"entropy_drain" json:"entropy_drain"`

	MaxRelChange float64 `yaml:"max_rel_change" json:"max_rel_change"`
	MinDt        float64 `yaml:"min_dt" json:"min_dt"`

	// WindowRadius overrides the present-day cosmic radius in the tick cap.
	WindowRadius float64 `yaml:"window_radius" json:"window_radius"`
}

func DefaultParams() Params {
	return Params{
		Duration:        10,
		Steps:           200,
		Integrator:      "rk4",
		AccretionRate:   0.8,
		AccretionDecay:  0.3,
		BrakeEfficiency: 1.2,
		DriveGain:       0.1,
		DriveSoftening:  0.1,
		SpinThreshold:   0.05,
		EntropyDrain:    0.5,
		MaxRelChange:    0.03,
		MinDt:           1e-12,
	}
}

type Series struct {
	Times   []float64 `json:"t"`
	Spin    []float64 `json:"spin"`
	Mass    []float64 `json:"mass"`
	Entropy []float64 `json:"entropy"`
}

func (s *Series) Len() int { return len(s.Times) }

func (s *Series) append(t, spin, mass, entropy float64) {
	s.Times = append(s.Times, t)
	s.Spin = append(s.Spin, spin)
	s.Mass = append(s.Mass, mass)
	s.Entropy = append(s.Entropy, entropy)
}

// accretion is the mass channel dM/dt = rate e^{-decay t}, held at the
// step's start time `at` for every integrator stage. It is stepped with the
// configured integrator; spin and entropy use forward Euler.
type accretion struct {
	rate, decay float64
	at          float64
}

func (a *accretion) StateDim() int   { return 1 }
func (a *accretion) ControlDim() int { return 0 }
func (a *accretion) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{a.rate * math.Exp(-a.decay*a.at)}
}

type Model struct {
	lab sigmap.Lab
	log *zap.Logger
}

func New(lab sigmap.Lab, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{lab: lab, log: log}
}

// TickLimit is the number of sigma_P cells c R duration / sigma_P available
// to a run inside a window of radius R.
func (m *Model) TickLimit(radius, duration float64) float64 {
	k := m.lab.K
	return k.C * radius * duration / k.SigmaP()
}

// EffectiveSteps lowers steps to the tick limit when the limit is finite and
// smaller, keeping at least 10 and at most 10000 steps.
func EffectiveSteps(steps int, ticks float64) int {
	if math.IsInf(ticks, 0) || math.IsNaN(ticks) || ticks <= 0 || ticks >= float64(steps) {
		return steps
	}
	return max(10, int(math.Min(10000, ticks)))
}

// Simulate runs Steps accepted steps. The trial step starts at
// Duration/Steps and only ever shrinks: a step whose relative change in
// mass or spin exceeds MaxRelChange is retried smaller without advancing.
// Each sample carries the time at the start of its step, so the first is
// t = 0.
func (m *Model) Simulate(ctx context.Context, p Params) (*Series, error) {
	if p.Duration <= 0 || p.Steps <= 0 {
		return nil, fmt.Errorf("%w: duration and steps must be positive", dynamo.ErrInvalidConfig)
	}
	integ, err := integrators.ByName(p.Integrator)
	if err != nil {
		return nil, err
	}

	radius := p.WindowRadius
	if radius <= 0 {
		radius, _ = m.lab.CosmicWindowNow()
	}
	steps := EffectiveSteps(p.Steps, m.TickLimit(radius, p.Duration))

	limiter := integrators.NewLimiter(p.MaxRelChange, p.MinDt)
	sys := &accretion{rate: p.AccretionRate, decay: p.AccretionDecay}

	out := &Series{}
	var t, spin, mass, entropy float64
	dt := p.Duration / float64(steps)
	retries := 0

	for accepted := 0; accepted < steps; {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		drive := p.DriveGain / (mass + p.DriveSoftening)
		brake := p.BrakeEfficiency * mass * mass
		sys.at = t
		rates := dynamo.State{sys.Derive(nil, nil, t)[0], drive - brake}

		ok, next := limiter.Admit(dynamo.State{mass, spin}, rates, dt)
		if !ok {
			dt = next
			retries++
			continue
		}

		mass = integ.Step(sys, dynamo.State{mass}, nil, t, dt)[0]
		spin = math.Max(spin+rates[1]*dt, 0)
		if spin > p.SpinThreshold {
			entropy += spin * dt
		} else {
			entropy = math.Max(entropy-p.EntropyDrain*dt, 0)
		}
		out.append(t, spin, mass, entropy)
		t += dt
		accepted++
	}

	m.log.Debug("spin brake finished",
		zap.Int("steps", steps),
		zap.Int("retries", retries),
		zap.Float64("t_end", t),
		zap.Float64("dt_final", dt))
	return out, nil
}

// ToyPageCurve is the normalised textbook picture on t in [0, 100]: the
// hole's entropy falls as (1 - t/100)^2, the radiation entropy rises
// linearly until pageTime and then tracks the hole's entropy.
func ToyPageCurve(n int, pageTime float64) (t, sBH, sRad []float64) {
	if n < 2 {
		n = 2
	}
	t = make([]float64, n)
	sBH = make([]float64, n)
	sRad = make([]float64, n)
	for i := range t {
		t[i] = 100 * float64(i) / float64(n-1)
		sBH[i] = math.Pow(1-t[i]/100, 2)
		if t[i] < pageTime {
			sRad[i] = t[i] / pageTime
		} else {
			sRad[i] = sBH[i]
		}
	}
	return t, sBH, sRad
}
