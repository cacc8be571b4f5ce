package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	projector  Projector
	metrics    []Metric
	observers  []Observer
	log        *zap.Logger
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func WithProjector(p Projector) Option {
	return func(s *Simulator) { s.projector = p }
}

// New builds a simulator. A nil controller feeds a zero control vector.
func New(dyn System, integrator Integrator, controller Controller, opts ...Option) *Simulator {
	s := &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from cfg.Start for cfg.Duration. Fixed stepping takes
// round(Duration/Dt) steps; adaptive stepping lands exactly on the end time.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := newResult(steps)
	s.resetMetrics()

	x := x0.Clone()
	t := cfg.Start
	end := cfg.Start + cfg.Duration
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.log.Debug("simulation started",
		zap.Float64("start", t),
		zap.Float64("end", end),
		zap.Float64("dt", dt),
		zap.Bool("adaptive", cfg.Adaptive))

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= end-1e-12*math.Max(1, math.Abs(end)) {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.control(x, t)
		s.observe(x, u, t)

		h := dt
		if cfg.Adaptive && t+h > end {
			h = end - t
		}

		newX, used, next, err := s.advance(x, u, t, h, cfg)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}
		result.Rejected += next.rejected
		if cfg.Adaptive && (h == dt || used < h) {
			dt = next.dt
		}

		if s.projector != nil {
			newX = s.projector.Project(newX, t+used)
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Warn("simulation stopped on invalid state", zap.Int("step", i), zap.Float64("t", t))
			break
		}

		x = newX
		if cfg.Adaptive {
			t += used
		} else {
			t = cfg.Start + float64(i+1)*cfg.Dt
		}
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	s.collectMetrics(result)
	s.log.Debug("simulation finished",
		zap.Int("steps", result.StepsTaken),
		zap.Int("rejected", result.Rejected),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// RunAt integrates adaptively and records the state exactly at every
// requested time. times must be increasing; the first entry is the
// initial time of x0.
func (s *Simulator) RunAt(ctx context.Context, x0 State, times []float64, cfg Config) (*Result, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: no output times", ErrInvalidConfig)
	}
	if cfg.Dt <= 0 || cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: dt and tolerance must be positive", ErrInvalidConfig)
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("%w: output times not increasing at %d", ErrInvalidConfig, i)
		}
	}

	cfg.Adaptive = true
	result := newResult(len(times))
	s.resetMetrics()

	x := x0.Clone()
	t := times[0]
	dt := cfg.Dt
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	step := 0
	for _, target := range times[1:] {
		for t < target {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			h := dt
			clipped := false
			if t+h >= target {
				h = target - t
				clipped = true
			}

			u := s.control(x, t)
			s.observe(x, u, t)

			newX, used, next, err := s.advance(x, u, t, h, cfg)
			if err != nil {
				return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
			}
			result.Rejected += next.rejected
			if s.projector != nil {
				newX = s.projector.Project(newX, t+used)
			}
			if cfg.ValidateState && !newX.IsValid() {
				return result, &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			}

			x = newX
			if used == h && clipped {
				t = target
			} else {
				t += used
			}
			if !clipped || used < h {
				dt = next.dt
			}
			step++
			result.StepsTaken++
		}
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, target)
	}

	s.collectMetrics(result)
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	return nil
}

type stepInfo struct {
	dt       float64
	rejected int
}

// advance takes one accepted step starting with trial size dt. It returns
// the new state, the step size actually used and the suggested next step.
func (s *Simulator) advance(x State, u Control, t, dt float64, cfg Config) (State, float64, stepInfo, error) {
	if !cfg.Adaptive {
		return s.integrator.Step(s.dyn, x, u, t, dt), dt, stepInfo{dt: dt}, nil
	}

	info := stepInfo{}
	for {
		newX, next, err := s.adaptiveStep(x, u, t, dt, cfg)
		if cfg.MaxDt > 0 && next > cfg.MaxDt {
			next = cfg.MaxDt
		}
		if err == nil {
			info.dt = next
			return newX, dt, info, nil
		}
		if !errors.Is(err, ErrStepRejected) {
			return nil, 0, info, err
		}
		info.rejected++
		if next < cfg.MinDt {
			return nil, 0, info, fmt.Errorf("%w: dt=%g", ErrStepTooSmall, next)
		}
		dt = next
	}
}

// adaptiveStep delegates to an embedded-error integrator when available and
// otherwise estimates the error by step doubling.
func (s *Simulator) adaptiveStep(x State, u Control, t, dt float64, cfg Config) (State, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.dyn, x, u, t, dt, cfg.Tolerance)
	}

	x1 := s.integrator.Step(s.dyn, x, u, t, dt)
	xHalf := s.integrator.Step(s.dyn, x, u, t, dt/2)
	x2 := s.integrator.Step(s.dyn, xHalf, u, t+dt/2, dt/2)

	scale := math.Max(1, x2.MaxAbs())
	err := x1.Sub(x2).MaxAbs() / scale

	if err > cfg.Tolerance && dt/2 >= cfg.MinDt {
		return x, dt / 2, ErrStepRejected
	}

	next := dt
	if err < cfg.Tolerance/10 {
		next = dt * 2
	}
	return x2, next, nil
}

func (s *Simulator) control(x State, t float64) Control {
	if s.controller == nil {
		return make(Control, s.dyn.ControlDim())
	}
	return s.controller.Compute(x, t)
}

func (s *Simulator) observe(x State, u Control, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, u, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, u, t)
	}
}

func (s *Simulator) resetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulator) collectMetrics(result *Result) {
	if n := len(result.States); n > 0 {
		last := result.States[n-1]
		u := s.control(last, result.Times[n-1])
		for _, m := range s.metrics {
			m.Observe(last, u, result.Times[n-1])
		}
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func newResult(capacity int) *Result {
	if capacity < 0 {
		capacity = 0
	}
	return &Result{
		States:   make([]State, 0, capacity+1),
		Controls: make([]Control, 0, capacity),
		Times:    make([]float64, 0, capacity+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}
}
