package orbits

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

// Tolerance is the relative tolerance of the adaptive polar solves.
const Tolerance = 1e-9

// ParticleOrbit is a massive test particle in polar coordinates.
// State: [r, phi, v_r, v_phi] with v_phi the tangential speed.
type ParticleOrbit struct {
	Mass float64
	k    constants.Constants
}

func NewParticleOrbit(k constants.Constants, mass float64) *ParticleOrbit {
	return &ParticleOrbit{Mass: mass, k: k}
}

func (p *ParticleOrbit) StateDim() int    { return 4 }
func (p *ParticleOrbit) ControlDim() int  { return 0 }
func (p *ParticleOrbit) Labels() []string { return []string{"r", "phi", "v_r", "v_phi"} }

func (p *ParticleOrbit) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	r, vr, vphi := x[0], x[2], x[3]
	re := effectiveRadius(p.k, r)
	return dynamo.State{
		vr,
		vphi / r,
		-p.k.G*p.Mass/(re*re) + vphi*vphi/r,
		-vr * vphi / r,
	}
}

func (p *ParticleOrbit) SchwarzschildRadius() float64 {
	return blackhole.New(p.k).SchwarzschildRadius(p.Mass)
}

// Start places the particle at radius rFactor r_s moving tangentially at
// vFraction c.
func (p *ParticleOrbit) Start(rFactor, vFraction float64) dynamo.State {
	return dynamo.State{rFactor * p.SchwarzschildRadius(), 0, 0, vFraction * p.k.C}
}

func (p *ParticleOrbit) GetParams() map[string]float64 {
	return map[string]float64{"mass": p.Mass}
}

func (p *ParticleOrbit) SetParam(name string, value float64) error {
	if name != "mass" {
		return fmt.Errorf("unknown param: %s", name)
	}
	p.Mass = value
	return nil
}

// effectiveRadius softens r at the sigma_P length sigma_P c.
func effectiveRadius(k constants.Constants, r float64) float64 {
	s := k.SigmaP() * k.C
	return math.Sqrt(r*r + s*s)
}

// Orbit is a polar trajectory sampled at uniform times.
type Orbit struct {
	Times []float64 `json:"t"`
	R     []float64 `json:"r"`
	Phi   []float64 `json:"phi"`
	VR    []float64 `json:"v_r"`
	VPhi  []float64 `json:"v_phi"`
	Rs    float64   `json:"r_s"`
}

func (o *Orbit) Len() int { return len(o.Times) }

func (o *Orbit) Cartesian() (xs, ys []float64) {
	xs = make([]float64, len(o.R))
	ys = make([]float64, len(o.R))
	for i, r := range o.R {
		xs[i] = r * math.Cos(o.Phi[i])
		ys[i] = r * math.Sin(o.Phi[i])
	}
	return xs, ys
}

// AngularMomentum returns r v_phi per unit mass at every sample.
func (o *Orbit) AngularMomentum() []float64 {
	out := make([]float64, len(o.R))
	for i, r := range o.R {
		out[i] = r * o.VPhi[i]
	}
	return out
}

func (o *Orbit) MinRadius() float64 {
	if len(o.R) == 0 {
		return 0
	}
	return floats.Min(o.R)
}

type ParticleParams struct {
	SolarMasses float64 `yaml:"solar_masses" json:"solar_masses"`
	RadiusRs    float64 `yaml:"radius_rs" json:"radius_rs"`
	VPhiC       float64 `yaml:"v_phi_c" json:"v_phi_c"`
	Duration    float64 `yaml:"duration" json:"duration"`
	Samples     int     `yaml:"samples" json:"samples"`
}

func DefaultParticleParams() ParticleParams {
	return ParticleParams{
		SolarMasses: 10,
		RadiusRs:    3,
		VPhiC:       0.3,
		Duration:    1e-3,
		Samples:     10000,
	}
}

// Particle integrates a ParticleOrbit with adaptive Dormand-Prince and
// samples it at Samples uniform times over [0, Duration].
func Particle(ctx context.Context, k constants.Constants, p ParticleParams, log *zap.Logger) (*Orbit, error) {
	if p.SolarMasses <= 0 || p.RadiusRs <= 0 {
		return nil, fmt.Errorf("%w: mass and start radius must be positive", dynamo.ErrInvalidConfig)
	}
	sys := NewParticleOrbit(k, p.SolarMasses*k.SolarMass)
	res, err := solvePolar(ctx, sys, sys.Start(p.RadiusRs, p.VPhiC), p.Duration, p.Samples, log)
	if err != nil {
		return nil, err
	}
	return newOrbit(res, sys.SchwarzschildRadius()), nil
}

func solvePolar(ctx context.Context, sys dynamo.System, x0 dynamo.State, duration float64, n int, log *zap.Logger) (*dynamo.Result, error) {
	if n < 2 || duration <= 0 {
		return nil, fmt.Errorf("%w: need a positive duration and at least two samples", dynamo.ErrInvalidConfig)
	}
	if log == nil {
		log = zap.NewNop()
	}

	times := floats.Span(make([]float64, n), 0, duration)
	cfg := dynamo.DefaultConfig()
	cfg.Dt = duration / float64(n-1)
	cfg.MaxDt = cfg.Dt
	cfg.MinDt = duration * 1e-14
	cfg.Tolerance = Tolerance

	sim := dynamo.New(sys, integrators.NewRK45(), nil, dynamo.WithLogger(log))
	res, err := sim.RunAt(ctx, x0, times, cfg)
	if err != nil {
		return nil, fmt.Errorf("orbits: integration failed: %w", err)
	}
	log.Debug("orbit solved", zap.Int("samples", n), zap.Int("steps", res.StepsTaken))
	return res, nil
}

func newOrbit(res *dynamo.Result, rs float64) *Orbit {
	return &Orbit{
		Times: res.Times,
		R:     dynamo.Column(res.States, 0),
		Phi:   dynamo.Column(res.States, 1),
		VR:    dynamo.Column(res.States, 2),
		VPhi:  dynamo.Column(res.States, 3),
		Rs:    rs,
	}
}
