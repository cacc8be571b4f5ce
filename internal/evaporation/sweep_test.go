package evaporation

import (
	"context"
	"math"
	"testing"

	"go.uber.org/goleak"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
)

func TestAlphaSweepKeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ev := New(blackhole.Default)
	p := DefaultParams()
	p.Steps = 200
	alphas := []float64{8, 1, 4, 2}

	points, err := ev.AlphaSweep(context.Background(), constants.Default.SolarMass, alphas, p)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(points) != len(alphas) {
		t.Fatalf("expected %d points, got %d", len(alphas), len(points))
	}
	for i, pt := range points {
		if pt.Alpha != alphas[i] {
			t.Errorf("point %d: alpha %f, want %f", i, pt.Alpha, alphas[i])
		}
		if pt.Run == nil || pt.Run.Len() == 0 {
			t.Errorf("point %d: empty run", i)
		}
	}
}

func TestAlphaSweepPropagatesErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ev := New(blackhole.Default)
	_, err := ev.AlphaSweep(context.Background(), -1, nil, DefaultParams())
	if err == nil {
		t.Fatal("expected an error for a negative mass")
	}
}

func TestAlphaSweepCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := New(blackhole.Default)
	if _, err := ev.AlphaSweep(ctx, constants.Default.SolarMass, nil, DefaultParams()); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestSmoothedHawkingDerive(t *testing.T) {
	mp := constants.Default.PlanckMass()
	sys := NewSmoothedHawking(blackhole.Default, 4, 1, mp)
	sys.RecycleRate = 2
	sys.RecycleStart = 10
	sys.RecycleEnd = 20

	above := sys.Derive(dynamo.State{10 * mp}, nil, 0)[0]
	if above >= 0 {
		t.Errorf("expected mass loss above the remnant, got %g", above)
	}
	want := -blackhole.Default.HawkingPrefactor(1) / (104 * mp * mp)
	if math.Abs(above-want) > 1e-12*math.Abs(want) {
		t.Errorf("rate = %g, want %g", above, want)
	}

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"before window", 5, 0},
		{"inside window", 15, 2},
		{"after window", 25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sys.Derive(dynamo.State{mp}, nil, tt.t)[0]
			if got != tt.want {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}

	if got := sys.Project(dynamo.State{mp / 2}, 0)[0]; got != mp {
		t.Errorf("projection = %g, want %g", got, mp)
	}
}

func TestSmoothedHawkingParams(t *testing.T) {
	sys := NewSmoothedHawking(blackhole.Default, 4, 1, 1)
	if err := sys.SetParam("alpha", -3); err != nil {
		t.Fatal(err)
	}
	if sys.GetParams()["alpha"] != 0 {
		t.Errorf("negative alpha should clamp to 0, got %f", sys.Alpha)
	}
	if err := sys.SetParam("nope", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestPageClosures(t *testing.T) {
	const (
		tau  = 100.0
		s0   = 50.0
		srem = 2.0
	)
	tests := []struct {
		name    string
		closure Closure
		t       float64
		want    float64
	}{
		{"linear start", LinearPage, 0, 0},
		{"linear page time", LinearPage, 50, 25},
		{"linear midway back", LinearPage, 75, 13.5},
		{"linear end", LinearPage, 100, srem},
		{"linear after", LinearPage, 150, srem},
		{"exp page time", ExponentialPage, 50, 25},
		{"exp end", ExponentialPage, 100, srem + 23*math.Exp(-4)},
		{"exp after", ExponentialPage, 101, srem},
		{"loss", InformationLoss, 25, 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.closure(tt.t, tau, s0, srem)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRemnantIndex(t *testing.T) {
	// each step loses 2 until the floor at 1
	next := func(m float64) float64 { return m - 2 }
	tests := []struct {
		name string
		mass []float64
		want int
	}{
		{"never", []float64{9, 7, 5}, 2},
		{"lands", []float64{5, 3, 1, 1}, 1},
		{"starts there", []float64{1, 1}, 0},
		{"regrows and lands again", []float64{5, 3, 1, 2, 1, 1}, 3},
		{"last step lands", []float64{5, 3, 1, 2}, 3},
		{"starts there then regrows", []float64{1, 2, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remnantIndex(tt.mass, 1, next); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
