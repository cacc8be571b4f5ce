package blackhole

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/constants"
)

var ErrNonPositiveMass = errors.New("blackhole: mass must be positive")

// Floor replaces zero or negative magnitudes in the clamped formulas.
const Floor = 1e-99

func safe(x float64) float64 {
	return math.Max(math.Abs(x), Floor)
}

type Calc struct {
	K constants.Constants
}

func New(k constants.Constants) Calc {
	return Calc{K: k}
}

var Default = New(constants.Default)

func (b Calc) Validate(mass float64) error {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return fmt.Errorf("%w: got %g kg", ErrNonPositiveMass, mass)
	}
	return nil
}

// SchwarzschildRadius is 2 G M / c^2.
func (b Calc) SchwarzschildRadius(mass float64) float64 {
	return 2 * b.K.G * safe(mass) / (b.K.C * b.K.C)
}

// Kretschmann is the curvature invariant 48 G^2 M^2 / (c^4 r^6) [1/m^4].
func (b Calc) Kretschmann(mass, r float64) float64 {
	g, m, c2 := b.K.G, safe(mass), b.K.C*b.K.C
	return 48 * g * g * m * m / (c2 * c2 * math.Pow(safe(r), 6))
}

// PlanckCurvatureRadius is where K l_P^4 = 1.
func (b Calc) PlanckCurvatureRadius(mass float64) float64 {
	g, m, c2 := b.K.G, safe(mass), b.K.C*b.K.C
	lp2 := b.K.PlanckLength() * b.K.PlanckLength()
	return math.Pow(48*g*g*m*m*lp2*lp2/(c2*c2), 1.0/6.0)
}

// HawkingTemperature is hbar c^3 / (8 pi G M kB).
func (b Calc) HawkingTemperature(mass float64) float64 {
	c := b.K.C
	return b.K.Hbar * c * c * c / (8 * math.Pi * b.K.G * safe(mass) * b.K.KB)
}

// HorizonArea is 4 pi r_s^2.
func (b Calc) HorizonArea(mass float64) float64 {
	rs := b.SchwarzschildRadius(mass)
	return 4 * math.Pi * rs * rs
}

// Entropy is the Bekenstein-Hawking entropy kB c^3 A / (4 hbar G) [J/K].
func (b Calc) Entropy(mass float64) float64 {
	c := b.K.C
	return b.K.KB * c * c * c * b.HorizonArea(mass) / (4 * b.K.Hbar * b.K.G)
}

// Lifetime is the continuum evaporation time 5120 pi G^2 M^3 / (hbar c^4).
func (b Calc) Lifetime(mass float64) float64 {
	g, m, c2 := b.K.G, safe(mass), b.K.C*b.K.C
	return 5120 * math.Pi * g * g * m * m * m / (b.K.Hbar * c2 * c2)
}

// HawkingPrefactor is K0 in dM/dt = -K0/M^2, scaled by gamma (clamped >= 0)
// for greybody and species factors.
func (b Calc) HawkingPrefactor(gamma float64) float64 {
	g, c2 := b.K.G, b.K.C*b.K.C
	return math.Max(gamma, 0) * b.K.Hbar * c2 * c2 / (15360 * math.Pi * g * g)
}

type Diagnostics struct {
	Rs    float64 `json:"r_s"`
	RPl   float64 `json:"r_pl"`
	Ratio float64 `json:"ratio"`
}

// Diagnose compares the horizon with the radius of Planckian curvature.
func (b Calc) Diagnose(mass float64) Diagnostics {
	rs := b.SchwarzschildRadius(mass)
	rpl := b.PlanckCurvatureRadius(mass)
	ratio := math.Inf(1)
	if rs > 0 {
		ratio = rpl / rs
	}
	return Diagnostics{Rs: rs, RPl: rpl, Ratio: ratio}
}

// ActionBurdenBalance compares the spin action potential with the
// gravitational braking of one solar mass. spin and burden are slider
// values in [0, 100]; out-of-range values are clamped.
func (b Calc) ActionBurdenBalance(spin, burden float64) float64 {
	spinFrac := clamp01(spin / 100)
	burdenFrac := clamp01(burden / 100)

	action := spinFrac * b.K.CoreEnergyMax() / b.K.Hbar
	rs := safe(b.SchwarzschildRadius(b.K.SolarMass))
	brake := burdenFrac * b.K.G * b.K.SolarMass / (rs * rs)

	return action / math.Max(brake, Floor)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
