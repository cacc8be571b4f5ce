// Package spectrum fits the empirical mass staircase m = M_P q^n to a set
// of observed particle masses with n quantized in half steps. It is a
// calibration tool, not a derivation.
package spectrum

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/optim"
)

const (
	// QRef is the reference ratio the fit is compared against.
	QRef = 0.22221
	// Step is the quantum of the staircase index.
	Step = 0.5

	DefaultQMin   = 0.15
	DefaultQMax   = 0.35
	DefaultPoints = 8000
)

var ErrNoParticles = errors.New("spectrum: no particles to fit")

type Particle struct {
	Name string  `yaml:"name" json:"name"`
	Mass float64 `yaml:"mass" json:"mass"`
}

// Particles are the observed masses in kg, heaviest first.
var Particles = []Particle{
	{"Top Quark", 3.078e-25},
	{"Bottom Quark", 7.48e-27},
	{"Proton", 1.6726e-27},
	{"Electron", 9.109e-31},
	{"Neutrino (Upper Bound)", 2.0e-37},
}

// Staircase anchors the ladder at the Planck mass.
type Staircase struct {
	MP float64
}

func New(k constants.Constants) Staircase {
	return Staircase{MP: k.PlanckMass()}
}

// CalculateN solves m = M_P q^n for n.
func (s Staircase) CalculateN(mass, q float64) float64 {
	return math.Log(mass/s.MP) / math.Log(q)
}

// QuantizeN snaps n to the nearest multiple of step, ties to even.
func QuantizeN(n, step float64) float64 {
	return math.RoundToEven(n/step) * step
}

func (s Staircase) PredictMass(n, q float64) float64 {
	return s.MP * math.Pow(q, n)
}

// PercentError is |obs - pred| / obs in percent, with obs floored at 1e-300.
func PercentError(obs, pred float64) float64 {
	return math.Abs(obs-pred) / math.Max(obs, 1e-300) * 100
}

// Loss is the RMS of ln(m_pred / m_obs) over particles with quantized n.
// Degenerate ratios (q <= 0, q == 1) score +Inf.
func (s Staircase) Loss(particles []Particle, q float64) float64 {
	if q <= 0 || math.Abs(q-1) < 1e-12 || len(particles) == 0 {
		return math.Inf(1)
	}
	sq := 0.0
	for _, p := range particles {
		pred := s.PredictMass(QuantizeN(s.CalculateN(p.Mass, q), Step), q)
		r := math.Log(pred / p.Mass)
		sq += r * r
	}
	return math.Sqrt(sq / float64(len(particles)))
}

type Fit struct {
	Q    float64 `json:"q"`
	Loss float64 `json:"loss"`
}

// FitQ scans points evenly spaced ratios over [qMin, qMax] and keeps the
// first one with the lowest Loss. A grid with no finite loss falls back to
// QRef with an infinite loss.
func (s Staircase) FitQ(ctx context.Context, particles []Particle, qMin, qMax float64, points int) (Fit, error) {
	if len(particles) == 0 {
		return Fit{}, ErrNoParticles
	}
	if points < 2 {
		return Fit{}, fmt.Errorf("spectrum: need at least two grid points, got %d", points)
	}
	g := optim.NewGridSearch([]string{"q"}, [][]float64{optim.Span(qMin, qMax, points)})
	best, loss, err := g.Search(ctx, func(_ context.Context, p map[string]float64) (float64, error) {
		return s.Loss(particles, p["q"]), nil
	})
	if errors.Is(err, optim.ErrNoCandidate) {
		return Fit{Q: QRef, Loss: math.Inf(1)}, nil
	}
	if err != nil {
		return Fit{}, fmt.Errorf("spectrum: fit: %w", err)
	}
	return Fit{Q: best["q"], Loss: loss}, nil
}

type Row struct {
	Name       string  `json:"name"`
	Observed   float64 `json:"observed"`
	Predicted  float64 `json:"predicted"`
	NRaw       float64 `json:"n_raw"`
	NQuantized float64 `json:"n_q"`
	ErrorPct   float64 `json:"error_pct"`
}

// Table evaluates the staircase at q for every particle and returns the
// rows with their mean absolute percent error.
func (s Staircase) Table(particles []Particle, q float64) ([]Row, float64) {
	rows := make([]Row, len(particles))
	errs := make([]float64, len(particles))
	for i, p := range particles {
		n := s.CalculateN(p.Mass, q)
		nq := QuantizeN(n, Step)
		pred := s.PredictMass(nq, q)
		rows[i] = Row{
			Name:       p.Name,
			Observed:   p.Mass,
			Predicted:  pred,
			NRaw:       n,
			NQuantized: nq,
			ErrorPct:   PercentError(p.Mass, pred),
		}
		errs[i] = rows[i].ErrorPct
	}
	if len(errs) == 0 {
		return rows, 0
	}
	return rows, stat.Mean(errs, nil)
}
