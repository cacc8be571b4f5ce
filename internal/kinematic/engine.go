package kinematic

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

// DefaultLambda is the share of infalling rest energy that spins the core up.
const DefaultLambda = 0.1

const (
	idxCore = iota
	idxReservoir
	idxOmega
)

type History struct {
	Times      []float64 `json:"t"`
	Mass       []float64 `json:"mass"`
	Omega      []float64 `json:"omega"`
	Luminosity []float64 `json:"luminosity"`
}

func (h *History) Len() int { return len(h.Times) }

func (h *History) record(t, mass, omega, lum float64) {
	h.Times = append(h.Times, t)
	h.Mass = append(h.Mass, mass)
	h.Omega = append(h.Omega, omega)
	h.Luminosity = append(h.Luminosity, lum)
}

// Engine carries the state (core mass, reservoir, omega) and its history.
// The reservoir is not floored: a drive that outruns it leaves it negative
// while the total mass stays fixed.
//
// As a dynamo.System the state is [core, reservoir, omega] and the control
// is the accretion rate:
//
//	dM_core/dt = r, dM_ext/dt = -r
//	domega/dt = lambda r c^2 / hbar - G M_tot^2 omega / (c^5 hbar)
type Engine struct {
	Lambda    float64
	CoreMass  float64
	Reservoir float64
	Omega     float64
	Time      float64
	History   History

	k     constants.Constants
	euler *integrators.Euler
	log   *zap.Logger
}

// NewEngine starts the core at omega = omega_max M_P / M0.
func NewEngine(k constants.Constants, m0, reservoir float64, log *zap.Logger) (*Engine, error) {
	if !(m0 > 0) {
		return nil, fmt.Errorf("kinematic: core mass must be positive, got %g", m0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		Lambda:    DefaultLambda,
		CoreMass:  m0,
		Reservoir: reservoir,
		Omega:     k.PlanckFrequency() * k.PlanckMass() / m0,
		k:         k,
		euler:     integrators.NewEuler(),
		log:       log,
	}, nil
}

func (e *Engine) StateDim() int   { return 3 }
func (e *Engine) ControlDim() int { return 1 }

func (e *Engine) Labels() []string { return []string{"core_mass", "reservoir", "omega"} }

func (e *Engine) State() dynamo.State {
	return dynamo.State{e.CoreMass, e.Reservoir, e.Omega}
}

// BrakingRate is G M_tot^2 / (c^5 hbar); omega decays at this rate times omega.
func (e *Engine) BrakingRate(total float64) float64 {
	c := e.k.C
	return e.k.G * total * total / (c * c * c * c * c * e.k.Hbar)
}

// Luminosity is hbar times the braking spin-down rate.
func (e *Engine) Luminosity(x dynamo.State) float64 {
	return e.k.Hbar * e.BrakingRate(x[idxCore]+x[idxReservoir]) * x[idxOmega]
}

func (e *Engine) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	rate := 0.0
	if len(u) > 0 {
		rate = u[0]
	}
	spinUp := e.Lambda * rate * e.k.C * e.k.C / e.k.Hbar
	brake := e.BrakingRate(x[idxCore]+x[idxReservoir]) * x[idxOmega]
	return dynamo.State{rate, -rate, spinUp - brake}
}

// Project keeps the spin non-negative.
func (e *Engine) Project(x dynamo.State, t float64) dynamo.State {
	x[idxOmega] = math.Max(x[idxOmega], 0)
	return x
}

func (e *Engine) GetParams() map[string]float64 {
	return map[string]float64{"lambda": e.Lambda}
}

func (e *Engine) SetParam(name string, value float64) error {
	if name != "lambda" {
		return fmt.Errorf("unknown param: %s", name)
	}
	e.Lambda = value
	return nil
}

// Step advances one explicit step with a fixed accretion rate and appends
// the post-step sample to the history.
func (e *Engine) Step(dt, rate float64) {
	x := e.State()
	lum := e.Luminosity(x)
	next := e.Project(e.euler.Step(e, x, dynamo.Control{rate}, e.Time, dt), e.Time+dt)
	e.load(next)
	e.Time += dt
	e.History.record(e.Time, next[idxCore]+next[idxReservoir], next[idxOmega], lum)
}

// Run takes floor(duration/dt) steps with the accretion rate supplied by
// drive. A nil drive means no accretion.
func (e *Engine) Run(ctx context.Context, duration, dt float64, drive dynamo.Controller) error {
	if dt <= 0 || duration < dt {
		return fmt.Errorf("%w: need 0 < dt <= duration", dynamo.ErrInvalidConfig)
	}
	steps := math.Floor(duration / dt)

	lum := &luminosityTap{engine: e}
	sim := dynamo.New(e, e.euler, drive,
		dynamo.WithProjector(e),
		dynamo.WithLogger(e.log))
	sim.AddObserver(lum)

	cfg := dynamo.DefaultConfig()
	cfg.Start = e.Time
	cfg.Dt = dt
	cfg.Duration = steps * dt

	res, err := sim.Run(ctx, e.State(), cfg)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return res.Errors[0]
	}

	for i := 1; i < len(res.States); i++ {
		x := res.States[i]
		e.History.record(res.Times[i], x[idxCore]+x[idxReservoir], x[idxOmega], lum.values[i-1])
	}
	e.load(res.Final())
	e.Time = res.Times[len(res.Times)-1]

	e.log.Debug("kinematic cycle",
		zap.Int("steps", res.StepsTaken),
		zap.Float64("omega", e.Omega),
		zap.Float64("core_mass", e.CoreMass))
	return nil
}

func (e *Engine) load(x dynamo.State) {
	e.CoreMass = x[idxCore]
	e.Reservoir = x[idxReservoir]
	e.Omega = x[idxOmega]
}

// luminosityTap records the braking luminosity at the start of every step.
type luminosityTap struct {
	engine *Engine
	values []float64
}

func (l *luminosityTap) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	l.values = append(l.values, l.engine.Luminosity(x))
}
