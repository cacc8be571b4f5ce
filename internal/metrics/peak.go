package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/sigmalab/internal/dynamo"
)

// Peak tracks the largest value of component index and when it occurred.
type Peak struct {
	name  string
	index int
	max   float64
	at    float64
	seen  bool
}

func NewPeak(label string, index int) *Peak {
	return &Peak{name: fmt.Sprintf("%s_peak", label), index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.max {
		p.max, p.at, p.seen = x[p.index], t, true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.max
}

// At is the time of the peak.
func (p *Peak) At() float64 { return p.at }

func (p *Peak) Reset() {
	p.max, p.at, p.seen = 0, 0, false
}

// ControlEffort is the mean absolute control per sample.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
