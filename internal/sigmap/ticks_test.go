package sigmap

import (
	"math"
	"testing"
)

func TestTickArithmetic(t *testing.T) {
	one := Default.NewTick()
	three := one.Add(one).Add(one)
	assertRelClose(t, "3 ticks", three.Action, one.Scale(3).Action)
	if (Tick{}).Action != 0 {
		t.Error("zero tick must be empty")
	}
}

func TestHawkingActionIsHbar(t *testing.T) {
	masses := []float64{Default.K.PlanckMass(), 1e12, 1.989e30, 1e40}
	for _, m := range masses {
		assertRelClose(t, "hawking action", Default.HawkingAction(m), Default.K.Hbar)
	}
}

func TestCouplingsAtPlanckMass(t *testing.T) {
	mp := Default.K.PlanckMass()
	assertRelClose(t, "alpha_G(M_P)", Default.GravitationalCoupling(mp), 1)
	assertRelClose(t, "chi(M_P)", Default.SpinTwoCoupling(mp), 1)
	assertRelClose(t, "rate(M_P)", Default.HawkingRate(mp), 1)
	assertRelClose(t, "ticks(M_P)", Default.BHTickCount(mp), 4*math.Pi)
	assertRelClose(t, "S(M_P)", Default.EntropyBits(mp), 4*math.Pi)
}

func TestIndices(t *testing.T) {
	sp := Default.K.SigmaP()
	assertRelClose(t, "info index", Default.InfoIndex(5*sp), 5)
	assertRelClose(t, "tick index", Default.TickIndex(2, 3*sp), 6)
	assertRelClose(t, "ticks", Default.Ticks(Default.K.Hbar*7), 7)
}

func TestRelationRatio(t *testing.T) {
	k := Default.K
	assertRelClose(t, "Z A_G / sigma_P", Default.RelationRatio(), k.Hbar*k.G/k.C)
}
