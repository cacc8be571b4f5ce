package orbits

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
)

var ErrNoPerihelion = errors.New("orbits: fewer than two perihelion passages")

// Precessing is a ParticleOrbit whose attraction carries the
// 1 + 3 (r v_phi)^2 / (c r_eff)^2 post-Newtonian factor and the
// 1 + (sigma_P c / r_eff)^2 smoothing term.
type Precessing struct {
	Mass float64
	k    constants.Constants
}

func NewPrecessing(k constants.Constants, mass float64) *Precessing {
	return &Precessing{Mass: mass, k: k}
}

func (p *Precessing) StateDim() int    { return 4 }
func (p *Precessing) ControlDim() int  { return 0 }
func (p *Precessing) Labels() []string { return []string{"r", "phi", "v_r", "v_phi"} }

func (p *Precessing) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	r, vr, vphi := x[0], x[2], x[3]
	re := effectiveRadius(p.k, r)
	l := vphi * r
	pull := -p.k.G * p.Mass / (re * re) * (1 + 3*l*l/(p.k.C*p.k.C*re*re))
	s := p.k.SigmaP() * p.k.C / re
	return dynamo.State{
		vr,
		vphi / r,
		pull*(1+s*s) + vphi*vphi/r,
		-vr * vphi / r,
	}
}

type PrecessionParams struct {
	Mass         float64 `yaml:"mass" json:"mass"`
	SemiMajorRs  float64 `yaml:"semi_major_rs" json:"semi_major_rs"`
	Eccentricity float64 `yaml:"eccentricity" json:"eccentricity"`
	Orbits       int     `yaml:"orbits" json:"orbits"`
	Samples      int     `yaml:"samples" json:"samples"`
}

// DefaultPrecessionParams keeps the orbit at 100 r_s where the expansion
// is still perturbative; at a few r_s the particle plunges.
func DefaultPrecessionParams() PrecessionParams {
	return PrecessionParams{
		Mass:         2e30,
		SemiMajorRs:  100,
		Eccentricity: 0.3,
		Orbits:       5,
		Samples:      20000,
	}
}

type Precession struct {
	Orbit *Orbit `json:"orbit"`
	// Perihelia holds the polar angle of each interior radius minimum.
	Perihelia []float64 `json:"perihelia"`
	// Shifts is the advance per revolution, phi_{i+1} - phi_i - 2 pi.
	Shifts    []float64 `json:"shifts"`
	Mean      float64   `json:"mean"`
	Predicted float64   `json:"predicted"`
	Period    float64   `json:"period"`
}

// PerihelionShift starts the particle at aphelion a(1+e) with the Kepler
// aphelion speed, integrates Orbits Newtonian periods and measures the
// advance of successive perihelia.
func PerihelionShift(ctx context.Context, k constants.Constants, p PrecessionParams, log *zap.Logger) (*Precession, error) {
	if p.Mass <= 0 || p.SemiMajorRs <= 0 || p.Orbits < 1 {
		return nil, fmt.Errorf("%w: mass, semi-major axis and orbit count must be positive", dynamo.ErrInvalidConfig)
	}
	if p.Eccentricity < 0 || p.Eccentricity >= 1 {
		return nil, fmt.Errorf("%w: eccentricity must lie in [0, 1)", dynamo.ErrInvalidConfig)
	}

	rs := blackhole.New(k).SchwarzschildRadius(p.Mass)
	gm := k.G * p.Mass
	a, e := p.SemiMajorRs*rs, p.Eccentricity
	r0 := a * (1 + e)
	v0 := math.Sqrt(gm * (1 - e) / r0)
	period := 2 * math.Pi * math.Sqrt(a*a*a/gm)

	sys := NewPrecessing(k, p.Mass)
	res, err := solvePolar(ctx, sys, dynamo.State{r0, 0, 0, v0}, period*float64(p.Orbits), p.Samples, log)
	if err != nil {
		return nil, err
	}
	orbit := newOrbit(res, rs)

	peri := perihelia(orbit.R, orbit.Phi)
	if len(peri) < 2 {
		return nil, ErrNoPerihelion
	}
	shifts := make([]float64, len(peri)-1)
	for i := range shifts {
		shifts[i] = peri[i+1] - peri[i] - 2*math.Pi
	}

	return &Precession{
		Orbit:     orbit,
		Perihelia: peri,
		Shifts:    shifts,
		Mean:      stat.Mean(shifts, nil),
		Predicted: 6 * math.Pi * gm / (k.C * k.C * a * (1 - e*e)),
		Period:    period,
	}, nil
}

// perihelia locates interior minima of r and refines each with a parabola
// through the three bracketing samples before interpolating phi.
func perihelia(r, phi []float64) []float64 {
	var out []float64
	for i := 1; i+1 < len(r); i++ {
		if !(r[i] < r[i-1] && r[i] <= r[i+1]) {
			continue
		}
		off := 0.0
		if den := r[i-1] - 2*r[i] + r[i+1]; den > 0 {
			off = 0.5 * (r[i-1] - r[i+1]) / den
		}
		if off >= 0 {
			out = append(out, phi[i]+off*(phi[i+1]-phi[i]))
		} else {
			out = append(out, phi[i]+off*(phi[i]-phi[i-1]))
		}
	}
	return out
}
