package integrators

import "github.com/san-kum/sigmalab/internal/dynamo"

var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = [4]float64{1, 2, 2, 1}
)

// RK4 is the classical fourth-order method. Stage buffers are reused
// between calls, so one RK4 must not step two systems concurrently.
type RK4 struct {
	k     [4]dynamo.State
	trial dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.trial) == n {
		return
	}
	for s := range r.k {
		r.k[s] = make(dynamo.State, n)
	}
	r.trial = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.resize(n)

	for s, c := range rk4Nodes {
		at := x
		if s > 0 {
			h := c * dt
			for i := 0; i < n; i++ {
				r.trial[i] = x[i] + h*r.k[s-1][i]
			}
			at = r.trial
		}
		copy(r.k[s], dyn.Derive(at, u, t+c*dt))
	}

	next := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		var sum float64
		for s, w := range rk4Weights {
			sum += w * r.k[s][i]
		}
		next[i] = x[i] + dt/6*sum
	}
	return next
}
