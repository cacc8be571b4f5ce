package orbits

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

// PhotonPath is a light ray in the plane. State: [x, y, v_x, v_y].
// The acceleration 2 G M / r_eff^3 carries the factor 2 of light bending
// and is weakened by 1 - sigma_P c / r_eff near the centre.
type PhotonPath struct {
	Mass float64
	k    constants.Constants
}

func NewPhotonPath(k constants.Constants, mass float64) *PhotonPath {
	return &PhotonPath{Mass: mass, k: k}
}

func (p *PhotonPath) StateDim() int    { return 4 }
func (p *PhotonPath) ControlDim() int  { return 0 }
func (p *PhotonPath) Labels() []string { return []string{"x", "y", "v_x", "v_y"} }

func (p *PhotonPath) Derive(s dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	x, y := s[0], s[1]
	re := effectiveRadius(p.k, math.Hypot(x, y))
	mag := 2 * p.k.G * p.Mass / (re * re * re)
	corr := 1 - p.k.SigmaP()*p.k.C/re
	return dynamo.State{s[2], s[3], -mag * x * corr, -mag * y * corr}
}

func (p *PhotonPath) SchwarzschildRadius() float64 {
	return blackhole.New(p.k).SchwarzschildRadius(p.Mass)
}

func (p *PhotonPath) GetParams() map[string]float64 {
	return map[string]float64{"mass": p.Mass}
}

func (p *PhotonPath) SetParam(name string, value float64) error {
	if name != "mass" {
		return fmt.Errorf("unknown param: %s", name)
	}
	p.Mass = value
	return nil
}

// Deflection is the direction of travel measured from +x. A ray bent
// toward a mass below it comes out negative.
func Deflection(vx, vy float64) float64 { return math.Atan2(vy, vx) }

// WeakFieldDeflection is the small-angle GR result 2 r_s / b.
func WeakFieldDeflection(rs, b float64) float64 { return 2 * rs / b }

type LensParams struct {
	SolarMasses float64 `yaml:"solar_masses" json:"solar_masses"`
	ImpactRs    float64 `yaml:"impact_rs" json:"impact_rs"`
	StartRs     float64 `yaml:"start_rs" json:"start_rs"`
	Duration    float64 `yaml:"duration" json:"duration"`
	Steps       int     `yaml:"steps" json:"steps"`
}

func DefaultLensParams() LensParams {
	return LensParams{
		SolarMasses: 1,
		ImpactRs:    2.5,
		StartRs:     -20,
		Duration:    1e-3,
		Steps:       5000,
	}
}

type Lens struct {
	Times      []float64 `json:"t"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Rs         float64   `json:"r_s"`
	Impact     float64   `json:"impact"`
	Deflection float64   `json:"deflection"`
}

func (l *Lens) Len() int { return len(l.Times) }

// Photon launches a ray at (StartRs r_s, ImpactRs r_s) moving along +x at c
// and integrates it with velocity Verlet.
func Photon(ctx context.Context, k constants.Constants, p LensParams, log *zap.Logger) (*Lens, error) {
	if p.SolarMasses <= 0 || p.ImpactRs <= 0 {
		return nil, fmt.Errorf("%w: mass and impact parameter must be positive", dynamo.ErrInvalidConfig)
	}
	if p.Steps < 1 {
		return nil, fmt.Errorf("%w: steps must be positive", dynamo.ErrInvalidConfig)
	}
	if log == nil {
		log = zap.NewNop()
	}

	sys := NewPhotonPath(k, p.SolarMasses*k.SolarMass)
	rs := sys.SchwarzschildRadius()
	b := p.ImpactRs * rs
	x0 := dynamo.State{p.StartRs * rs, b, k.C, 0}

	cfg := dynamo.DefaultConfig()
	cfg.Duration = p.Duration
	cfg.Dt = p.Duration / float64(p.Steps)

	sim := dynamo.New(sys, integrators.NewVerlet(), nil, dynamo.WithLogger(log))
	res, err := sim.Run(ctx, x0, cfg)
	if err != nil {
		return nil, fmt.Errorf("orbits: photon path: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("orbits: photon path: %w", res.Errors[0])
	}

	last := res.Final()
	lens := &Lens{
		Times:      res.Times,
		X:          dynamo.Column(res.States, 0),
		Y:          dynamo.Column(res.States, 1),
		Rs:         rs,
		Impact:     b,
		Deflection: Deflection(last[2], last[3]),
	}
	log.Debug("photon traced",
		zap.Float64("impact_rs", p.ImpactRs),
		zap.Float64("deflection", lens.Deflection))
	return lens, nil
}
