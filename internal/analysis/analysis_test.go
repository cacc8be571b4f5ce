package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

func TestDominantFrequencyOfSine(t *testing.T) {
	const (
		n    = 1000
		dt   = 0.01
		freq = 2.0
	)
	data := make([]float64, n)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}

	s, err := PowerSpectrum(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Freqs) != n/2+1 {
		t.Fatalf("expected %d bins, got %d", n/2+1, len(s.Freqs))
	}
	if s.Power[0] > 1e-18 {
		t.Errorf("mean should be removed, DC power = %g", s.Power[0])
	}
	if got := DominantFrequency(s); math.Abs(got-freq) > 1e-9 {
		t.Errorf("dominant frequency = %g, want %g", got, freq)
	}
}

func TestPowerSpectrumRejectsShortSeries(t *testing.T) {
	if _, err := PowerSpectrum([]float64{1, 2}, 0.1); err == nil {
		t.Error("expected ErrShortSeries")
	}
}

func TestGradient(t *testing.T) {
	x := []float64{0, 1, 3, 4, 7}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}
	g := Gradient(y, x)
	want := []float64{1, 2, 6, 8, 11}
	if diff := cmp.Diff(want, g, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("gradient mismatch (-want +got):\n%s", diff)
	}
	if Gradient([]float64{1}, []float64{1}) != nil {
		t.Error("single point should give nil")
	}
}

type decay struct{}

func (decay) StateDim() int   { return 1 }
func (decay) ControlDim() int { return 0 }
func (decay) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

type growth struct{}

func (growth) StateDim() int   { return 1 }
func (growth) ControlDim() int { return 0 }
func (growth) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{0.5 * x[0]}
}

func TestLyapunovExponentLinearSystems(t *testing.T) {
	tests := []struct {
		name string
		dyn  dynamo.System
		want float64
	}{
		{"decay", decay{}, -1},
		{"growth", growth{}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LyapunovExponent(tt.dyn, integrators.NewRK4(), dynamo.State{1}, 0.01, 10, 1e-8)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Errorf("lambda = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSectionInterpolates(t *testing.T) {
	trigger := []float64{0, 2, 0, 2}
	xs := []float64{0, 10, 20, 30}
	ys := []float64{1, 1, 1, 1}
	s := Section(trigger, xs, ys, 1)
	want := []Point{{X: 5, Y: 1}, {X: 25, Y: 1}}
	if diff := cmp.Diff(want, s.Points); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}
}

func TestPortraitASCII(t *testing.T) {
	p := NewPortrait([]float64{-1, 0, 1}, []float64{-1, 0, 1})
	out := p.ASCII(20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") || !strings.Contains(out, "│") {
		t.Error("expected points and a y axis")
	}
	if (Portrait{}).ASCII(10, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}

func TestBifurcationCollapsesValues(t *testing.T) {
	sample := func(ctx context.Context, p float64) ([]float64, error) {
		return []float64{p, p + 1e-6, 2 * p}, nil
	}
	pts, err := Bifurcation(context.Background(), 1, 3, 3, 2, 1e-3, sample)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, bp := range pts {
		if bp.Param != float64(i+1) {
			t.Errorf("param[%d] = %g", i, bp.Param)
		}
		if len(bp.Values) != 2 {
			t.Errorf("param %g: expected 2 distinct values, got %v", bp.Param, bp.Values)
		}
	}
	if BifurcationASCII(pts, 30, 8) == "" {
		t.Error("expected a rendering")
	}
}

func TestLocalExtrema(t *testing.T) {
	got := LocalExtrema([]float64{0, 2, 1, 3, 3, 0})
	if diff := cmp.Diff([]float64{2, 1}, got); diff != "" {
		t.Errorf("extrema mismatch (-want +got):\n%s", diff)
	}
}
