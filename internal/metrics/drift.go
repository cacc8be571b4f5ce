package metrics

import (
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// Invariant maps a state to a quantity the dynamics should conserve.
type Invariant func(x dynamo.State) float64

// Drift is the largest relative departure of an invariant from its value
// at the first observed sample.
type Drift struct {
	name     string
	f        Invariant
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name string, f Invariant) *Drift {
	return &Drift{name: name, f: f}
}

// NewComponentDrift watches a single state component.
func NewComponentDrift(name string, index int) *Drift {
	return NewDrift(name, func(x dynamo.State) float64 {
		if index >= len(x) {
			return 0
		}
		return x[index]
	})
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	v := d.f(x)
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		d.maxDrift = math.Max(d.maxDrift, math.Abs(v-d.initial)/math.Abs(d.initial))
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
