package control

import (
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

type Constant struct {
	Rate float64
}

func NewConstant(rate float64) *Constant {
	return &Constant{Rate: rate}
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{c.Rate}
}

func (c *Constant) GetParams() map[string]float64 {
	return map[string]float64{"rate": c.Rate}
}

func (c *Constant) SetParam(name string, value float64) error {
	if name != "rate" {
		return fmt.Errorf("unknown param: %s", name)
	}
	c.Rate = value
	return nil
}

// Sinusoidal feeds base (1 + sin(t/period)), which never goes negative for
// a non-negative base.
type Sinusoidal struct {
	Base   float64
	Period float64
}

func NewSinusoidal(base, period float64) *Sinusoidal {
	return &Sinusoidal{Base: base, Period: period}
}

func (s *Sinusoidal) Compute(x dynamo.State, t float64) dynamo.Control {
	if s.Period == 0 {
		return dynamo.Control{s.Base}
	}
	return dynamo.Control{s.Base * (1 + math.Sin(t/s.Period))}
}

func (s *Sinusoidal) GetParams() map[string]float64 {
	return map[string]float64{"base": s.Base, "period": s.Period}
}

func (s *Sinusoidal) SetParam(name string, value float64) error {
	switch name {
	case "base":
		s.Base = value
	case "period":
		s.Period = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
