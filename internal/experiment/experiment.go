// Package experiment wires a registered system, integrator and drive into
// a dynamo.Simulator from a flat configuration.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Config struct {
	Model      string
	Integrator string
	Drive      string
	InitState  []float64
	Dt         float64
	Duration   float64
	Adaptive   bool
	Tolerance  float64
	Seed       int64
	Params     map[string]float64
	DriveOpts  DriveParams
}

type Experiment struct {
	cfg       Config
	reg       *Registry
	dyn       dynamo.System
	x0        dynamo.State
	simulator *dynamo.Simulator
	log       *zap.Logger
}

func New(cfg Config, reg *Registry, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, reg: reg, log: log}
}

// Setup resolves the names in the configuration, applies parameter
// overrides and attaches the model's default metrics.
func (e *Experiment) Setup() error {
	dyn, x0, err := e.reg.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	if len(e.cfg.Params) > 0 {
		c, ok := dyn.(dynamo.Configurable)
		if !ok {
			return fmt.Errorf("model %s has no tunable parameters", e.cfg.Model)
		}
		for name, v := range e.cfg.Params {
			if err := c.SetParam(name, v); err != nil {
				return fmt.Errorf("model %s: %w", e.cfg.Model, err)
			}
		}
	}
	if len(e.cfg.InitState) > 0 {
		if len(e.cfg.InitState) != dyn.StateDim() {
			return fmt.Errorf("%w: init state has %d components, %s wants %d",
				dynamo.ErrDimensionMismatch, len(e.cfg.InitState), e.cfg.Model, dyn.StateDim())
		}
		x0 = dynamo.State(e.cfg.InitState).Clone()
	}

	if _, err := e.reg.GetIntegrator(e.cfg.Integrator); err != nil {
		return err
	}
	if _, err := e.reg.GetDrive(e.driveName(), dyn.ControlDim(), e.cfg.DriveOpts); err != nil {
		return err
	}

	e.dyn, e.x0 = dyn, x0
	e.simulator = e.build()
	return nil
}

func (e *Experiment) driveName() string {
	if e.cfg.Drive == "" {
		return "none"
	}
	return e.cfg.Drive
}

// build assembles a fresh simulator; integrators and regulators carry
// state so parallel runs each need their own.
func (e *Experiment) build() *dynamo.Simulator {
	integ, _ := e.reg.GetIntegrator(e.cfg.Integrator)
	drive, _ := e.reg.GetDrive(e.driveName(), e.dyn.ControlDim(), e.cfg.DriveOpts)

	opts := []dynamo.Option{dynamo.WithLogger(e.log)}
	if p, ok := e.dyn.(dynamo.Projector); ok {
		opts = append(opts, dynamo.WithProjector(p))
	}
	sim := dynamo.New(e.dyn, integ, drive, opts...)
	for _, m := range e.reg.DefaultMetrics(e.cfg.Model) {
		sim.AddMetric(m)
	}
	return sim
}

func (e *Experiment) simConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = e.cfg.Dt
	cfg.Duration = e.cfg.Duration
	cfg.Adaptive = e.cfg.Adaptive
	cfg.Seed = e.cfg.Seed
	if e.cfg.Tolerance > 0 {
		cfg.Tolerance = e.cfg.Tolerance
	}
	return cfg
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	e.log.Info("experiment started",
		zap.String("model", e.cfg.Model),
		zap.String("integrator", e.cfg.Integrator),
		zap.String("drive", e.driveName()),
		zap.Float64("dt", e.cfg.Dt),
		zap.Float64("duration", e.cfg.Duration))

	res, err := e.simulator.Run(ctx, e.x0, e.simConfig())
	if err != nil {
		return res, err
	}
	e.log.Info("experiment finished",
		zap.Int("steps", res.StepsTaken),
		zap.Any("metrics", res.Metrics))
	return res, nil
}

// Ensemble runs n copies whose initial components are scaled by
// 1 + spread u, u uniform in [-1, 1), drawn from the configured seed.
// The first copy is unperturbed.
func (e *Experiment) Ensemble(ctx context.Context, n int, spread float64, workers int) ([]*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	rng := rand.New(rand.NewSource(e.cfg.Seed))
	inits := make([]dynamo.State, n)
	for i := range inits {
		x := e.x0.Clone()
		if i > 0 {
			for j := range x {
				x[j] *= 1 + spread*(2*rng.Float64()-1)
			}
		}
		inits[i] = x
	}

	ens := dynamo.NewEnsemble(e.build, workers)
	return ens.Run(ctx, inits, e.simConfig())
}

// Labels names the state components when the model provides them.
func (e *Experiment) Labels() []string {
	if l, ok := e.dyn.(dynamo.Labeled); ok {
		return l.Labels()
	}
	return nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
