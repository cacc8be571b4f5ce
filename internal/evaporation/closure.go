package evaporation

import "math"

// Closure maps time to radiation entropy given the effective lifetime, the
// initial entropy and the remnant entropy. It stands in for a microstate
// calculation and is a heuristic.
type Closure func(t, tauEff, s0, srem float64) float64

// LinearPage rises linearly to S0/2 at tau_eff/2 and falls linearly to the
// remnant entropy at tau_eff.
func LinearPage(t, tauEff, s0, srem float64) float64 {
	tPage := math.Max(0.5*tauEff, 1e-99)
	if t >= tauEff {
		return srem
	}
	if t <= tPage {
		return 0.5 * s0 * t / tPage
	}
	frac := (t - tPage) / math.Max(tauEff-tPage, 1e-99)
	return (1-frac)*(0.5*s0-srem) + srem
}

// ExponentialPage rises like LinearPage and relaxes toward the remnant
// entropy as exp(-4 frac) after the Page time.
func ExponentialPage(t, tauEff, s0, srem float64) float64 {
	tPage := 0.5 * tauEff
	if t > tauEff {
		return srem
	}
	if t <= tPage {
		if tPage <= 0 {
			return 0
		}
		return 0.5 * s0 * t / tPage
	}
	frac := math.Min((t-tPage)/math.Max(tauEff-tPage, 1e-99), 1)
	return srem + (0.5*s0-srem)*math.Exp(-4*frac)
}

// InformationLoss is the semiclassical proxy S0 t / tau.
func InformationLoss(t, tau, s0, _ float64) float64 {
	return s0 * t / tau
}
