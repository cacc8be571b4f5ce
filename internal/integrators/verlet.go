package integrators

import "github.com/san-kum/sigmalab/internal/dynamo"

// split returns the number of position components in a [q..., v...] state.
func split(x dynamo.State) int { return len(x) / 2 }

// Verlet is velocity Verlet. The acceleration is read from the velocity
// half of Derive and may depend on position only; photon paths and other
// conservative force laws qualify.
type Verlet struct {
	trial dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n, half := len(x), split(x)
	if len(v.trial) != n {
		v.trial = make(dynamo.State, n)
	}

	a0 := dyn.Derive(x, u, t)
	next := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		next[i] = x[i] + dt*x[half+i] + 0.5*dt*dt*a0[half+i]
		v.trial[i] = next[i]
		v.trial[half+i] = x[half+i]
	}

	a1 := dyn.Derive(v.trial, u, t+dt)
	for i := 0; i < half; i++ {
		next[half+i] = x[half+i] + 0.5*dt*(a0[half+i]+a1[half+i])
	}
	return next
}

// Leapfrog is the kick-drift-kick form of the same scheme. It keeps the
// half-step velocity in trial so the second kick starts from it.
type Leapfrog struct {
	trial dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n, half := len(x), split(x)
	if len(l.trial) != n {
		l.trial = make(dynamo.State, n)
	}

	kick := dyn.Derive(x, u, t)
	for i := 0; i < half; i++ {
		l.trial[half+i] = x[half+i] + 0.5*dt*kick[half+i]
		l.trial[i] = x[i] + dt*l.trial[half+i]
	}

	next := make(dynamo.State, n)
	copy(next, l.trial)
	kick = dyn.Derive(l.trial, u, t+dt)
	for i := 0; i < half; i++ {
		next[half+i] = l.trial[half+i] + 0.5*dt*kick[half+i]
	}
	return next
}
