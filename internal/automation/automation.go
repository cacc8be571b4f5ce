// Package automation runs scripted batches of registered experiments:
// YAML scenarios, one-parameter sweeps and perturbed-start Monte Carlo.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sigmalab/internal/config"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/experiment"
	"github.com/san-kum/sigmalab/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. A zero integrator, dt or duration falls
// back to rk4 and the configured defaults.
type Step struct {
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	Drive      string             `yaml:"drive"`
	Rate       float64            `yaml:"rate"`
	Period     float64            `yaml:"period"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Adaptive   bool               `yaml:"adaptive"`
	Seed       int64              `yaml:"seed"`
	InitState  []float64          `yaml:"init_state"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func (s Step) config() experiment.Config {
	integ := s.Integrator
	if integ == "" {
		integ = "rk4"
	}
	dt, dur := s.Dt, s.Duration
	if dt == 0 {
		dt = config.DefaultDt
	}
	if dur == 0 {
		dur = config.DefaultDuration
	}
	return experiment.Config{
		Model:      s.Model,
		Integrator: integ,
		Drive:      s.Drive,
		InitState:  s.InitState,
		Dt:         dt,
		Duration:   dur,
		Adaptive:   s.Adaptive,
		Seed:       s.Seed,
		Params:     s.Params,
		DriveOpts:  experiment.DriveParams{Rate: s.Rate, Period: s.Period},
	}
}

// Saver stores a finished run and returns its id.
type Saver interface {
	Save(meta storage.RunMetadata, table storage.Table) (string, error)
}

// Outcome is the result of one scenario step.
type Outcome struct {
	Step   int
	Model  string
	Labels []string
	Result *dynamo.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &sc, nil
}

// Runner executes batches against one registry.
type Runner struct {
	reg   *experiment.Registry
	saver Saver
	log   *zap.Logger
}

// NewRunner returns a runner. saver may be nil, in which case save_as
// is ignored.
func NewRunner(reg *experiment.Registry, saver Saver, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{reg: reg, saver: saver, log: log}
}

// RunScenario executes the steps in order and stops at the first
// failure, returning the outcomes completed so far.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) ([]Outcome, error) {
	out := make([]Outcome, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		r.log.Info("scenario step",
			zap.String("scenario", sc.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(sc.Steps)),
			zap.String("model", step.Model))

		cfg := step.config()
		exp := experiment.New(cfg, r.reg, r.log)
		if err := exp.Setup(); err != nil {
			return out, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return out, fmt.Errorf("step %d run: %w", i+1, err)
		}

		o := Outcome{Step: i + 1, Model: step.Model, Labels: exp.Labels(), Result: res}
		if step.SaveAs != "" && r.saver != nil {
			id, err := r.saver.Save(storage.RunMetadata{
				Name:       step.SaveAs,
				Model:      step.Model,
				Seed:       cfg.Seed,
				Dt:         cfg.Dt,
				Duration:   cfg.Duration,
				Integrator: cfg.Integrator,
				Drive:      cfg.Drive,
				Params:     finite(cfg.Params),
				Metrics:    finite(res.Metrics),
			}, storage.ResultTable(res, o.Labels))
			if err != nil {
				return out, fmt.Errorf("step %d save: %w", i+1, err)
			}
			o.RunID = id
		}
		out = append(out, o)
	}
	return out, nil
}

// Sweep varies one model parameter over an evenly spaced grid.
type Sweep struct {
	Model      string
	Integrator string
	Param      string
	Min, Max   float64
	Points     int
	Dt         float64
	Duration   float64
	InitState  []float64
	Workers    int
}

type SweepPoint struct {
	Value   float64
	Final   dynamo.State
	Metrics map[string]float64
}

// RunSweep runs one experiment per grid value, in parallel. Points are
// returned in grid order.
func (r *Runner) RunSweep(ctx context.Context, sw Sweep) ([]SweepPoint, error) {
	if sw.Points < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point", dynamo.ErrInvalidConfig)
	}
	if sw.Param == "" {
		return nil, fmt.Errorf("%w: sweep parameter is empty", dynamo.ErrInvalidConfig)
	}
	step := 0.0
	if sw.Points > 1 {
		step = (sw.Max - sw.Min) / float64(sw.Points-1)
	}

	points := make([]SweepPoint, sw.Points)
	err := dynamo.ParallelFor(ctx, sw.Points, sw.Workers, func(ctx context.Context, i int) error {
		v := sw.Min + float64(i)*step
		exp := experiment.New(Step{
			Model:      sw.Model,
			Integrator: sw.Integrator,
			Dt:         sw.Dt,
			Duration:   sw.Duration,
			InitState:  sw.InitState,
			Params:     map[string]float64{sw.Param: v},
		}.config(), r.reg, zap.NewNop())
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
		}
		points[i] = SweepPoint{Value: v, Final: res.Final(), Metrics: res.Metrics}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("sweep finished",
		zap.String("model", sw.Model),
		zap.String("param", sw.Param),
		zap.Int("points", sw.Points))
	return points, nil
}

// MonteCarlo perturbs the model's start by a relative spread and checks
// every final state against Bound. Bound <= 0 checks finiteness only.
type MonteCarlo struct {
	Model      string
	Integrator string
	Trials     int
	Spread     float64
	Bound      float64
	Dt         float64
	Duration   float64
	Seed       int64
	Workers    int
}

type Trial struct {
	ID     int
	Init   dynamo.State
	Final  dynamo.State
	Stable bool
}

type MonteCarloStats struct {
	Trials    int
	Stable    int
	Fraction  float64
	MeanFinal []float64
	StdFinal  []float64
}

func (r *Runner) RunMonteCarlo(ctx context.Context, mc MonteCarlo) ([]Trial, MonteCarloStats, error) {
	if mc.Trials < 1 {
		return nil, MonteCarloStats{}, fmt.Errorf("%w: need at least one trial", dynamo.ErrInvalidConfig)
	}
	exp := experiment.New(Step{
		Model:      mc.Model,
		Integrator: mc.Integrator,
		Dt:         mc.Dt,
		Duration:   mc.Duration,
		Seed:       mc.Seed,
	}.config(), r.reg, r.log)
	if err := exp.Setup(); err != nil {
		return nil, MonteCarloStats{}, err
	}
	runs, err := exp.Ensemble(ctx, mc.Trials, mc.Spread, mc.Workers)
	if err != nil {
		return nil, MonteCarloStats{}, err
	}

	trials := make([]Trial, len(runs))
	for i, res := range runs {
		var init dynamo.State
		if len(res.States) > 0 {
			init = res.States[0]
		}
		final := res.Final()
		trials[i] = Trial{ID: i, Init: init, Final: final, Stable: bounded(final, mc.Bound) && len(res.Errors) == 0}
	}
	stats := Summarize(trials)
	r.log.Info("monte carlo finished",
		zap.String("model", mc.Model),
		zap.Int("trials", stats.Trials),
		zap.Int("stable", stats.Stable))
	return trials, stats, nil
}

// Summarize counts stable trials and averages the stable final states.
func Summarize(trials []Trial) MonteCarloStats {
	s := MonteCarloStats{Trials: len(trials)}
	var dim int
	for _, t := range trials {
		if t.Stable {
			s.Stable++
			dim = len(t.Final)
		}
	}
	if s.Trials > 0 {
		s.Fraction = float64(s.Stable) / float64(s.Trials)
	}
	if s.Stable == 0 {
		return s
	}

	s.MeanFinal = make([]float64, dim)
	s.StdFinal = make([]float64, dim)
	col := make([]float64, 0, s.Stable)
	for j := 0; j < dim; j++ {
		col = col[:0]
		for _, t := range trials {
			if t.Stable && j < len(t.Final) {
				col = append(col, t.Final[j])
			}
		}
		switch len(col) {
		case 0:
		case 1:
			s.MeanFinal[j] = col[0]
		default:
			s.MeanFinal[j], s.StdFinal[j] = stat.MeanStdDev(col, nil)
		}
	}
	return s
}

func bounded(x dynamo.State, bound float64) bool {
	if len(x) == 0 {
		return false
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if bound > 0 && math.Abs(v) > bound {
			return false
		}
	}
	return true
}

func finite(m map[string]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
