package cosmology

import (
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

type Params struct {
	LP         float64 `yaml:"l_p" json:"l_p"`
	TP         float64 `yaml:"t_p" json:"t_p"`
	HScale     float64 `yaml:"h_scale" json:"h_scale"`
	TCritical  float64 `yaml:"t_critical" json:"t_critical"`
	Rho0       float64 `yaml:"rho0" json:"rho0"`
	HExpansion float64 `yaml:"h_expansion" json:"h_expansion"`
	HDeflation float64 `yaml:"h_deflation" json:"h_deflation"`
	Alpha      float64 `yaml:"alpha" json:"alpha"`
	Eta        float64 `yaml:"eta" json:"eta"`
	Gamma      float64 `yaml:"gamma" json:"gamma"`
	Mu         float64 `yaml:"mu" json:"mu"`
	Epsilon    float64 `yaml:"epsilon" json:"epsilon"`
	FPlanck    float64 `yaml:"f_planck" json:"f_planck"`
	Heating    float64 `yaml:"heating" json:"heating"`
}

func DefaultParams() Params {
	return Params{
		LP:         1.616e-35,
		TP:         5.391e-44,
		HScale:     70,
		TCritical:  1,
		Rho0:       1,
		HExpansion: 73,
		HDeflation: 67,
		Alpha:      3.5,
		Eta:        0.9,
		Gamma:      0.4,
		Mu:         0.2,
		Epsilon:    1e-6,
		FPlanck:    0.01,
		Heating:    0.05,
	}
}

// DefaultInitial starts at unit scale factor, moderate expansion and above
// the critical temperature.
func DefaultInitial() dynamo.State { return dynamo.State{1, 0.6, 1.2} }

func EquationOfState(T, tc, alpha float64) float64 {
	return math.Tanh(alpha * (T - tc))
}

type Phase string

const (
	Expansion Phase = "EXPANSION (Hot)"
	Deflation Phase = "DEFLATION (Cold)"
)

// Phase is Expansion strictly above T_c.
func (p Params) Phase(T float64) Phase {
	if T > p.TCritical {
		return Expansion
	}
	return Deflation
}

// Entropy counts Planck cells: a^3 / l_P^3.
func (p Params) Entropy(a float64) float64 {
	return a * a * a / (p.LP * p.LP * p.LP)
}

func (p Params) PhysicalH(h float64) float64 { return h * p.HScale }

// Model is the (a, H, T) system.
type Model struct {
	P Params
}

func NewModel(p Params) *Model { return &Model{P: p} }

func (m *Model) StateDim() int    { return 3 }
func (m *Model) ControlDim() int  { return 0 }
func (m *Model) Labels() []string { return []string{"a", "H", "T"} }

func (m *Model) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	a, h, temp := x[0], x[1], x[2]
	p := m.P

	w := EquationOfState(temp, p.TCritical, p.Alpha)
	repulsion := p.FPlanck / (a*a*a*a + p.Epsilon)

	return dynamo.State{
		a * h,
		-(1+w)*p.Rho0/(a*a+p.Epsilon) + repulsion - p.Mu*h,
		-p.Eta*h*temp + p.Gamma*(p.TCritical-temp) + p.Heating*math.Exp(-a),
	}
}

func (m *Model) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha":    m.P.Alpha,
		"eta":      m.P.Eta,
		"gamma":    m.P.Gamma,
		"mu":       m.P.Mu,
		"rho0":     m.P.Rho0,
		"f_planck": m.P.FPlanck,
		"t_c":      m.P.TCritical,
	}
}

func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		m.P.Alpha = value
	case "eta":
		m.P.Eta = value
	case "gamma":
		m.P.Gamma = value
	case "mu":
		m.P.Mu = value
	case "rho0":
		m.P.Rho0 = value
	case "f_planck":
		m.P.FPlanck = value
	case "t_c":
		m.P.TCritical = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
