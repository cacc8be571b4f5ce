package metrics

import (
	"fmt"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// NonNegative counts the samples at which component index went below
// zero. Zero means the invariant held for the whole run.
type NonNegative struct {
	name       string
	index      int
	violations int
}

func NewNonNegative(label string, index int) *NonNegative {
	return &NonNegative{name: fmt.Sprintf("%s_negative", label), index: index}
}

func (n *NonNegative) Name() string { return n.name }

func (n *NonNegative) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if n.index < len(x) && x[n.index] < 0 {
		n.violations++
	}
}

func (n *NonNegative) Value() float64 { return float64(n.violations) }

func (n *NonNegative) Reset() { n.violations = 0 }

// Bounded is the fraction of samples whose components all stay within
// threshold in absolute value.
type Bounded struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{name: "bounded", threshold: threshold}
}

func (b *Bounded) Name() string { return b.name }

func (b *Bounded) Observe(x dynamo.State, u dynamo.Control, t float64) {
	b.samples++
	if x.MaxAbs() > b.threshold {
		b.violations++
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
