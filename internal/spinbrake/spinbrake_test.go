package spinbrake

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/sigmalab/internal/integrators"
	"github.com/san-kum/sigmalab/internal/sigmap"
)

func TestSimulateStaysNonNegative(t *testing.T) {
	m := New(sigmap.Default, nil)
	for _, integ := range []string{"euler", "rk4"} {
		for _, steps := range []int{50, 200} {
			for _, duration := range []float64{1, 10} {
				name := fmt.Sprintf("%s/%d/%g", integ, steps, duration)
				t.Run(name, func(t *testing.T) {
					p := DefaultParams()
					p.Integrator = integ
					p.Steps = steps
					p.Duration = duration

					s, err := m.Simulate(context.Background(), p)
					if err != nil {
						t.Fatal(err)
					}
					if s.Len() != steps {
						t.Fatalf("expected %d samples, got %d", steps, s.Len())
					}
					if len(s.Mass) != s.Len() || len(s.Spin) != s.Len() || len(s.Entropy) != s.Len() {
						t.Fatal("series lengths differ")
					}
					for i := 0; i < s.Len(); i++ {
						if s.Mass[i] < 0 || s.Spin[i] < 0 || s.Entropy[i] < 0 {
							t.Fatalf("negative value at %d: mass=%g spin=%g entropy=%g",
								i, s.Mass[i], s.Spin[i], s.Entropy[i])
						}
						if i > 0 && s.Times[i] <= s.Times[i-1] {
							t.Fatalf("time not increasing at %d", i)
						}
					}
				})
			}
		}
	}
}

func TestSimulateRespectsRelativeChangeLimit(t *testing.T) {
	m := New(sigmap.Default, nil)
	p := DefaultParams()
	p.Integrator = "euler"
	s, err := m.Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < s.Len(); i++ {
		if s.Mass[i-1] < 1e-8 {
			continue
		}
		rel := math.Abs(s.Mass[i]-s.Mass[i-1]) / s.Mass[i-1]
		if rel > p.MaxRelChange*(1+1e-9) {
			t.Errorf("step %d changed mass by %.4f", i, rel)
		}
	}
}

func TestSimulateTimeColumnStartsAtZero(t *testing.T) {
	m := New(sigmap.Default, nil)
	p := DefaultParams()

	rk, err := m.Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if rk.Times[0] != 0 {
		t.Errorf("first sample at t=%g, want 0", rk.Times[0])
	}
	if last := rk.Times[rk.Len()-1]; last >= p.Duration {
		t.Errorf("last sample at t=%g, want the start of the final step", last)
	}

	// the accretion rate is frozen over a step, so rk4 and euler agree
	p.Integrator = "euler"
	eu, err := m.Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if eu.Len() != rk.Len() {
		t.Fatalf("lengths differ: %d vs %d", eu.Len(), rk.Len())
	}
	for i := range rk.Mass {
		if math.Abs(rk.Mass[i]-eu.Mass[i]) > 1e-12*math.Max(1, eu.Mass[i]) {
			t.Fatalf("mass differs at %d: rk4 %g euler %g", i, rk.Mass[i], eu.Mass[i])
		}
	}
}

func TestSimulateUnknownIntegrator(t *testing.T) {
	p := DefaultParams()
	p.Integrator = "symplectic-magic"
	_, err := New(sigmap.Default, nil).Simulate(context.Background(), p)
	if !errors.Is(err, integrators.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestSimulateTickCap(t *testing.T) {
	lab := sigmap.Default
	m := New(lab, nil)
	p := DefaultParams()
	p.Duration = 1
	p.WindowRadius = 5 * lab.K.SigmaP() / (lab.K.C * p.Duration)

	s, err := m.Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 10 {
		t.Errorf("tick-capped run should take 10 steps, got %d", s.Len())
	}
}

func TestEffectiveSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps int
		ticks float64
		want  int
	}{
		{"plenty of ticks", 200, 1e60, 200},
		{"infinite", 200, math.Inf(1), 200},
		{"few ticks", 200, 5, 10},
		{"some ticks", 200, 42.7, 42},
		{"zero ticks", 200, 0, 200},
		{"capped", 20000, 15000, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveSteps(tt.steps, tt.ticks); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(sigmap.Default, nil).Simulate(ctx, DefaultParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestToyPageCurve(t *testing.T) {
	ts, sbh, srad := ToyPageCurve(101, 50)
	if len(ts) != 101 || ts[100] != 100 {
		t.Fatalf("bad time axis: len=%d last=%g", len(ts), ts[len(ts)-1])
	}
	if sbh[0] != 1 || sbh[100] != 0 {
		t.Errorf("hole entropy should fall from 1 to 0, got %g..%g", sbh[0], sbh[100])
	}
	if math.Abs(srad[25]-0.5) > 1e-12 {
		t.Errorf("radiation entropy at t=25 = %g, want 0.5", srad[25])
	}
	if srad[100] != 0 {
		t.Errorf("radiation entropy must return to 0, got %g", srad[100])
	}
}
