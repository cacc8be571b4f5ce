package control

import (
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// Regulator is a PID loop on x[Index] whose output is clamped at zero:
// it can feed matter but never remove it.
type Regulator struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	Index  int

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewRegulator(kp, ki, kd, target float64, index int) *Regulator {
	return &Regulator{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Index:  index,
		first:  true,
	}
}

func (p *Regulator) Compute(x dynamo.State, t float64) dynamo.Control {
	if p.Index < 0 || p.Index >= len(x) {
		return dynamo.Control{0}
	}

	err := p.Target - x[p.Index]
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return dynamo.Control{math.Max(p.Kp*err, 0)}
	}

	u := p.Kp * err
	if dt := t - p.prevT; dt > 0 {
		p.integral += err * dt
		u += p.Ki*p.integral + p.Kd*(err-p.prevErr)/dt
		p.prevErr = err
		p.prevT = t
	}
	return dynamo.Control{math.Max(u, 0)}
}

func (p *Regulator) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *Regulator) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"ki":     p.Ki,
		"kd":     p.Kd,
		"target": p.Target,
	}
}

func (p *Regulator) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
