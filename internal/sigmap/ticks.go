package sigmap

import "math"

// Tick is an amount of action. The zero value is empty; NewTick is one
// sigma_P quantum.
type Tick struct {
	Action float64
}

func (l Lab) NewTick() Tick {
	return Tick{Action: l.K.SigmaP()}
}

func (t Tick) Add(o Tick) Tick { return Tick{Action: t.Action + o.Action} }

func (t Tick) Scale(n float64) Tick { return Tick{Action: t.Action * n} }

// Ticks counts an action in units of hbar.
func (l Lab) Ticks(action float64) float64 {
	return action / l.K.Hbar
}

// TickIndex counts sigma_P cells in an energy-time product.
func (l Lab) TickIndex(energy, duration float64) float64 {
	return energy * duration / l.K.SigmaP()
}

// InfoIndex counts sigma_P cells in an action increment.
func (l Lab) InfoIndex(deltaAction float64) float64 {
	return deltaAction / l.K.SigmaP()
}

// GravitationalCoupling is the dimensionless alpha_G = G M^2 / (hbar c).
func (l Lab) GravitationalCoupling(mass float64) float64 {
	return l.K.G * mass * mass / (l.K.Hbar * l.K.C)
}

// SpinTwoCoupling is the quadratic self coupling alpha_G^2.
func (l Lab) SpinTwoCoupling(mass float64) float64 {
	a := l.GravitationalCoupling(mass)
	return a * a
}

// HawkingRate is 1/sqrt(alpha_G): emission slows as the hole grows.
func (l Lab) HawkingRate(mass float64) float64 {
	return 1 / math.Sqrt(l.GravitationalCoupling(mass))
}

// BHTickCount is 4 pi alpha_G, the hbar count of a horizon.
func (l Lab) BHTickCount(mass float64) float64 {
	return 4 * math.Pi * l.GravitationalCoupling(mass)
}

// HawkingEnergy is the Hawking quantum hbar c^3 / (8 pi G M) in joules.
func (l Lab) HawkingEnergy(mass float64) float64 {
	c := l.K.C
	return l.K.Hbar * c * c * c / (8 * math.Pi * l.K.G * mass)
}

func (l Lab) HawkingTime(mass float64) float64 {
	return l.K.Hbar / l.HawkingEnergy(mass)
}

// HawkingAction is energy times time of one quantum, identically hbar.
func (l Lab) HawkingAction(mass float64) float64 {
	return l.HawkingEnergy(mass) * l.HawkingTime(mass)
}

// EntropyBits is the dimensionless Bekenstein-Hawking entropy A / (4 l_P^2).
func (l Lab) EntropyBits(mass float64) float64 {
	c := l.K.C
	rs := 2 * l.K.G * mass / (c * c)
	area := 4 * math.Pi * rs * rs
	return area / (4 * l.K.PlanckLengthSquared())
}

// RelationRatio is Z A_G / sigma_P which reduces to hbar G / c.
func (l Lab) RelationRatio() float64 {
	return l.K.InteractionQuantum() * l.K.GeometricCoupling() / l.K.SigmaP()
}
