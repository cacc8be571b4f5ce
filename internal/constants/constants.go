// Package constants holds the SI constants and the sigma_P derived scales
// every model in the lab is built from.
package constants

import "math"

// Constants is a full set of SI inputs. Derived scales are methods so an
// overridden set (from config) stays self-consistent.
type Constants struct {
	Hbar           float64 `yaml:"hbar" json:"hbar"`
	G              float64 `yaml:"g" json:"G"`
	C              float64 `yaml:"c" json:"c"`
	KB             float64 `yaml:"kb" json:"kB"`
	SolarMass      float64 `yaml:"solar_mass" json:"M_sun"`
	LightYear      float64 `yaml:"light_year" json:"light_year_m"`
	SecondsPerYear float64 `yaml:"seconds_per_year" json:"seconds_per_year"`
}

// Default is CODATA 2018 with the Julian year.
var Default = Constants{
	Hbar:           1.054571817e-34,
	G:              6.67430e-11,
	C:              2.99792458e8,
	KB:             1.380649e-23,
	SolarMass:      1.989e30,
	LightYear:      9.4607e15,
	SecondsPerYear: 365.25 * 24.0 * 3600.0,
}

// SigmaP is the action-area constant hbar G / c^4 [m s].
func (k Constants) SigmaP() float64 {
	return k.Hbar * k.G / (k.C * k.C * k.C * k.C)
}

// PlanckLengthSquared is hbar G / c^3, computed independently of SigmaP.
func (k Constants) PlanckLengthSquared() float64 {
	return k.Hbar * k.G / (k.C * k.C * k.C)
}

func (k Constants) PlanckLength() float64 {
	return math.Sqrt(k.SigmaP() * k.C)
}

func (k Constants) PlanckTime() float64 {
	return math.Sqrt(k.SigmaP() / k.C)
}

func (k Constants) PlanckMass() float64 {
	return math.Sqrt(k.Hbar * k.C / k.G)
}

func (k Constants) PlanckEnergy() float64 {
	return k.PlanckMass() * k.C * k.C
}

// PlanckFrequency is the spin ceiling omega_max = 1/t_P.
func (k Constants) PlanckFrequency() float64 {
	return 1 / k.PlanckTime()
}

// CoreEnergyMax is hbar * omega_max.
func (k Constants) CoreEnergyMax() float64 {
	return k.Hbar * k.PlanckFrequency()
}

// InteractionQuantum is Z = hbar^2 / c.
func (k Constants) InteractionQuantum() float64 {
	return k.Hbar * k.Hbar / k.C
}

// GeometricCoupling is A_G = G^2 / c^4.
func (k Constants) GeometricCoupling() float64 {
	return k.G * k.G / (k.C * k.C * k.C * k.C)
}

// PlanckForce is c^4 / G, the ceiling on any gravitational braking force.
func (k Constants) PlanckForce() float64 {
	return k.C * k.C * k.C * k.C / k.G
}

// PlanckTemperatureCap is hbar / (kB t_P).
func (k Constants) PlanckTemperatureCap() float64 {
	return k.Hbar / (k.KB * k.PlanckTime())
}

func (k Constants) Year() float64 {
	return k.SecondsPerYear
}

// Valid reports whether every input is positive and finite.
func (k Constants) Valid() bool {
	for _, v := range []float64{k.Hbar, k.G, k.C, k.KB, k.SolarMass, k.LightYear, k.SecondsPerYear} {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
