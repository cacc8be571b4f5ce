package blackhole

import (
	"errors"
	"fmt"
	"math"
)

var ErrSpinOutOfRange = errors.New("blackhole: spin must satisfy 0 <= chi < 1")

// Kerr holds horizon data of a rotating hole. Lengths are geometric (m).
type Kerr struct {
	Mass     float64 `json:"M"`
	Chi      float64 `json:"chi"`
	MGeo     float64 `json:"M_geo"`
	AGeo     float64 `json:"a_geo"`
	RPlus    float64 `json:"r_plus"`
	RMinus   float64 `json:"r_minus"`
	KappaGeo float64 `json:"kappa_geo"`
	KappaSI  float64 `json:"kappa_SI"`
	TH       float64 `json:"T_H"`

	c float64
}

func (b Calc) NewKerr(mass, chi float64) (Kerr, error) {
	if !(chi >= 0 && chi < 1) {
		return Kerr{}, fmt.Errorf("%w: got %g", ErrSpinOutOfRange, chi)
	}
	if err := b.Validate(mass); err != nil {
		return Kerr{}, err
	}

	c := b.K.C
	mGeo := b.K.G * mass / (c * c)
	aGeo := chi * mGeo
	s := math.Sqrt(1 - chi*chi)
	rp := mGeo * (1 + s)
	rm := mGeo * (1 - s)
	kappa := (rp - rm) / (2 * (rp*rp + aGeo*aGeo))

	return Kerr{
		Mass:     mass,
		Chi:      chi,
		MGeo:     mGeo,
		AGeo:     aGeo,
		RPlus:    rp,
		RMinus:   rm,
		KappaGeo: kappa,
		KappaSI:  c * c * kappa,
		TH:       b.K.Hbar * c * kappa / (2 * math.Pi * b.K.KB),
		c:        c,
	}, nil
}

// EpsilonTerms returns the kernel smearing ratios eps_t = tau kappa / c and
// eps_s = L / r_+.
func (k Kerr) EpsilonTerms(tau, length float64) (epsT, epsS float64) {
	return tau * k.KappaSI / k.c, length / k.RPlus
}

// C0Temporal is (pi^2/6) eps_t^2.
func (k Kerr) C0Temporal(tau float64) float64 {
	epsT, _ := k.EpsilonTerms(tau, 0)
	return math.Pi * math.Pi / 6 * epsT * epsT
}

// Mode is one greybody channel: the log-log slope of its transmission at
// the spectral peak and its share of the emission there.
type Mode struct {
	Slope  float64 `json:"slope_pk" yaml:"slope"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// DefaultModes are placeholder slopes for the three lowest channels.
var DefaultModes = []Mode{
	{Slope: 0.8, Weight: 0.5},
	{Slope: 0.4, Weight: 0.3},
	{Slope: 0.2, Weight: 0.2},
}

// C0Spatial is 0.5 eps_s^2 sum(w_norm slope^2). Weights are normalised; a
// non-positive weight sum gives zero.
func (k Kerr) C0Spatial(length float64, modes []Mode) float64 {
	wsum := 0.0
	for _, m := range modes {
		wsum += m.Weight
	}
	if wsum <= 0 {
		return 0
	}

	_, epsS := k.EpsilonTerms(0, length)
	acc := 0.0
	for _, m := range modes {
		acc += m.Weight / wsum * m.Slope * m.Slope
	}
	return 0.5 * epsS * epsS * acc
}

// C0 is the leading-order total; O(eps^3) terms are dropped.
func (k Kerr) C0(tau, length float64, modes []Mode) float64 {
	return k.C0Temporal(tau) + k.C0Spatial(length, modes)
}
