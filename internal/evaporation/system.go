package evaporation

import (
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/dynamo"
)

// SmoothedHawking is the one-component system M(t). Below the remnant
// floor the hole is frozen, except inside the recycle window where it
// accretes at RecycleRate.
type SmoothedHawking struct {
	Alpha       float64
	Gamma       float64
	RemnantMass float64
	PlanckMass  float64

	RecycleRate  float64
	RecycleStart float64
	RecycleEnd   float64

	k0 float64
}

func NewSmoothedHawking(bh blackhole.Calc, alpha, gamma, remnant float64) *SmoothedHawking {
	s := &SmoothedHawking{
		Alpha:       math.Max(alpha, 0),
		Gamma:       math.Max(gamma, 0),
		RemnantMass: math.Max(math.Abs(remnant), blackhole.Floor),
		PlanckMass:  bh.K.PlanckMass(),
	}
	s.k0 = bh.HawkingPrefactor(1)
	return s
}

func (s *SmoothedHawking) StateDim() int   { return 1 }
func (s *SmoothedHawking) ControlDim() int { return 0 }

func (s *SmoothedHawking) Labels() []string { return []string{"mass"} }

// MassLossRate is dM/dt above the remnant floor.
func (s *SmoothedHawking) MassLossRate(m float64) float64 {
	return -s.Gamma * s.k0 / (m*m + s.Alpha*s.PlanckMass*s.PlanckMass)
}

func (s *SmoothedHawking) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	m := x[0]
	if m > s.RemnantMass {
		return dynamo.State{s.MassLossRate(m)}
	}
	if s.RecycleRate > 0 && t >= s.RecycleStart && t <= s.RecycleEnd {
		return dynamo.State{s.RecycleRate}
	}
	return dynamo.State{0}
}

// Project clamps the mass at the remnant floor.
func (s *SmoothedHawking) Project(x dynamo.State, t float64) dynamo.State {
	if x[0] < s.RemnantMass {
		x[0] = s.RemnantMass
	}
	return x
}

func (s *SmoothedHawking) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha":         s.Alpha,
		"gamma":         s.Gamma,
		"remnant_mass":  s.RemnantMass,
		"recycle_rate":  s.RecycleRate,
		"recycle_start": s.RecycleStart,
		"recycle_end":   s.RecycleEnd,
	}
}

func (s *SmoothedHawking) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		s.Alpha = math.Max(value, 0)
	case "gamma":
		s.Gamma = math.Max(value, 0)
	case "remnant_mass":
		s.RemnantMass = math.Max(math.Abs(value), blackhole.Floor)
	case "recycle_rate":
		s.RecycleRate = value
	case "recycle_start":
		s.RecycleStart = value
	case "recycle_end":
		s.RecycleEnd = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
