package kinematic

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sigmalab/internal/constants"
)

// UnitaryProfile is the schematic unitary Page curve
// 2.8 (1 - e^{-7x}) e^{-4x}, which rises, peaks and returns to zero.
func UnitaryProfile(x float64) float64 {
	return 2.8 * (1 - math.Exp(-7*x)) * math.Exp(-4*x)
}

// NonThermality is c0 = (pi^2/6) eps^2 + 0.5 slope^2 eps^2.
func NonThermality(eps, slope float64) float64 {
	return math.Pi*math.Pi/6*eps*eps + 0.5*slope*slope*eps*eps
}

type MotorSweep struct {
	Spin           float64   `json:"spin"`
	Burden         []float64 `json:"burden"`
	NetPotential   []float64 `json:"net_potential"`
	NaiveEntropy   []float64 `json:"naive_entropy"`
	UnitaryEntropy []float64 `json:"unitary_entropy"`
	C0             []float64 `json:"c0"`
}

// SweepMotor loads a core spinning at spin (0..100) with a burden running
// over [bMin, bMax]. The net potential is i_max (spin/100)(1 - b/2) and
// eps = (101 - spin)/1000 feeds the non-thermality with the burden as slope.
func SweepMotor(k constants.Constants, spin, bMin, bMax float64, n int) MotorSweep {
	if n < 2 {
		n = 2
	}
	burden := floats.Span(make([]float64, n), bMin, bMax)
	imax := k.PlanckForce()
	eps := (101 - spin) / 1000

	s := MotorSweep{
		Spin:           spin,
		Burden:         burden,
		NetPotential:   make([]float64, n),
		NaiveEntropy:   make([]float64, n),
		UnitaryEntropy: make([]float64, n),
		C0:             make([]float64, n),
	}
	for i, b := range burden {
		s.NetPotential[i] = imax * spin / 100 * (1 - b/2)
		s.NaiveEntropy[i] = 1.5 * b
		s.UnitaryEntropy[i] = UnitaryProfile(b)
		s.C0[i] = NonThermality(eps, b)
	}
	return s
}

type Interplay struct {
	Times              []float64 `json:"t"`
	NetPotential       []float64 `json:"net_potential"`
	MassLoad           []float64 `json:"mass_load"`
	BrakingForce       []float64 `json:"braking_force"`
	TransformationRate []float64 `json:"transformation_rate"`
}

// SpinMassInterplay loads a core of mass m0 as M0 (1 - e^{-t/2}) on
// t in [0, 10]. The load brakes the Planck-force potential with
// G M_load / (r_s^2 + l_P^2).
func SpinMassInterplay(k constants.Constants, m0 float64, n int) Interplay {
	if n < 2 {
		n = 2
	}
	t := floats.Span(make([]float64, n), 0, 10)
	imax := k.PlanckForce()
	rs := 2 * k.G * m0 / (k.C * k.C)
	soft := rs*rs + k.PlanckLengthSquared()

	out := Interplay{
		Times:              t,
		NetPotential:       make([]float64, n),
		MassLoad:           make([]float64, n),
		BrakingForce:       make([]float64, n),
		TransformationRate: make([]float64, n),
	}
	for i, ti := range t {
		load := m0 * (1 - math.Exp(-0.5*ti))
		brake := k.G * load / soft
		out.MassLoad[i] = load
		out.BrakingForce[i] = brake
		out.NetPotential[i] = imax - brake
		out.TransformationRate[i] = math.Max(brake/imax, 0)
	}
	return out
}
