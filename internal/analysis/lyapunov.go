package analysis

import (
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// LyapunovExponent estimates the largest exponent by stepping a reference
// and a shadow trajectory, logging their separation after every step and
// pulling the shadow back to distance d0 along the separation.
//
// The integrator is stepped for both trajectories, so it must not carry
// state between calls beyond scratch buffers.
func LyapunovExponent(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, d0 float64) float64 {
	if len(x0) == 0 || dt <= 0 || d0 <= 0 {
		return 0
	}

	x := x0.Clone()
	shadow := x0.Clone()
	shadow[0] += d0
	u := make(dynamo.Control, dyn.ControlDim())

	steps := int(duration / dt)
	sum := 0.0
	used := 0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(dyn, x, u, t, dt)
		shadow = integ.Step(dyn, shadow, u, t, dt)

		sep := shadow.Sub(x).Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sum += math.Log(sep / d0)
		used++

		scale := d0 / sep
		for j := range shadow {
			shadow[j] = x[j] + (shadow[j]-x[j])*scale
		}
	}

	if used == 0 {
		return 0
	}
	return sum / (float64(used) * dt)
}
