package integrators

import (
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The seventh stage is evaluated at the new
// point (FSAL) and only feeds the error estimate.
var (
	dpNodes = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpCoupling = [7][6]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}

	// fifth minus fourth order weights
	dpError = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// RK45 is an embedded Dormand-Prince stepper. The error of component i is
// measured against Atol + Rtol*max(|x_i|, |x_new_i|); StepAdaptive treats
// its tol argument as Rtol.
type RK45 struct {
	Atol float64

	safety   float64
	minScale float64
	maxScale float64
	k        [7]dynamo.State
	stage    dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		Atol:     1e-10,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) ensureScratch(n int) {
	if len(r.stage) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.stage = make(dynamo.State, n)
	}
}

// Step takes one fifth-order step of exactly dt without error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	xNew, _ := r.stages(dyn, x, u, t, dt)
	return xNew
}

func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	xNew, errEst := r.stages(dyn, x, u, t, dt)

	errNorm := 0.0
	for i := range x {
		sc := r.Atol + tol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst[i] / sc
		errNorm += e * e
	}
	errNorm = math.Sqrt(errNorm / float64(len(x)))

	if errNorm > 1 || math.IsNaN(errNorm) {
		scale := r.minScale
		if !math.IsNaN(errNorm) {
			scale = math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.2))
		}
		return x, dt * scale, dynamo.ErrStepRejected
	}

	scale := r.maxScale
	if errNorm > 0 {
		scale = math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	}
	return xNew, dt * scale, nil
}

// stages evaluates the tableau and returns the fifth-order solution and
// the embedded error estimate.
func (r *RK45) stages(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, dynamo.State) {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x, u, t))
	var xNew dynamo.State
	for s := 1; s < 7; s++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for j := 0; j < s; j++ {
				acc += dpCoupling[s][j] * r.k[j][i]
			}
			r.stage[i] = x[i] + dt*acc
		}
		if s == 6 {
			xNew = r.stage.Clone()
		}
		copy(r.k[s], dyn.Derive(r.stage, u, t+dpNodes[s]*dt))
	}

	errEst := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for s := 0; s < 7; s++ {
			acc += dpError[s] * r.k[s][i]
		}
		errEst[i] = dt * acc
	}
	return xNew, errEst
}
