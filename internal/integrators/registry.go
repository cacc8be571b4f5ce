package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

var builders = map[string]func() dynamo.Integrator{
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"rk4":      func() dynamo.Integrator { return NewRK4() },
	"rk45":     func() dynamo.Integrator { return NewRK45() },
	"verlet":   func() dynamo.Integrator { return NewVerlet() },
	"leapfrog": func() dynamo.Integrator { return NewLeapfrog() },
}

// ByName returns a fresh integrator. Integrators carry scratch state, so
// callers running in parallel ask for one each.
func ByName(name string) (dynamo.Integrator, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
