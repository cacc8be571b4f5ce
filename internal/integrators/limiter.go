package integrators

import (
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// Limiter bounds the fractional change any state component may undergo in a
// single explicit step. Stiff toy models use it in place of an error
// estimate: a step whose relative change exceeds MaxRel is shrunk and
// retried without advancing time.
type Limiter struct {
	MaxRel float64
	MinDt  float64
	// Floor is the magnitude below which a component counts as this size
	// when computing its relative change.
	Floor float64
	// Shrink multiplies the proportional step reduction.
	Shrink float64
}

func NewLimiter(maxRel, minDt float64) *Limiter {
	return &Limiter{
		MaxRel: maxRel,
		MinDt:  minDt,
		Floor:  1e-8,
		Shrink: 0.9,
	}
}

// RelChange returns the largest |rate_i*dt| / max(|x_i|, Floor).
func (l *Limiter) RelChange(x, rate dynamo.State, dt float64) float64 {
	worst := 0.0
	for i := range x {
		if i >= len(rate) {
			break
		}
		rel := math.Abs(rate[i]*dt) / math.Max(math.Abs(x[i]), l.Floor)
		worst = math.Max(worst, rel)
	}
	return worst
}

// Admit reports whether a step of size dt is acceptable. When it is not,
// the returned dt is the shrunken step to retry with, never below MinDt.
// A step already at MinDt is always admitted.
func (l *Limiter) Admit(x, rate dynamo.State, dt float64) (bool, float64) {
	rel := l.RelChange(x, rate, dt)
	if rel <= l.MaxRel || dt <= l.MinDt {
		return true, dt
	}
	return false, math.Max(l.MinDt, dt*l.MaxRel/rel*l.Shrink)
}
