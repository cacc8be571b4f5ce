package sigmap

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func assertRelClose(t *testing.T, name string, a, b float64) {
	t.Helper()
	if !RelClose(a, b, 1e-12, 0) {
		t.Errorf("%s: %e and %e differ by %e", name, a, b, math.Abs(a-b)/math.Max(math.Abs(a), math.Abs(b)))
	}
}

func TestSigmaPMagnitude(t *testing.T) {
	sp := Default.K.SigmaP()
	if sp < 8.0e-79 || sp > 9.5e-79 {
		t.Errorf("sigma_P = %e, want ~8.7e-79", sp)
	}
}

func TestPlanckProjectionIdentity(t *testing.T) {
	k := Default.K
	assertRelClose(t, "l_P^2 = sigma_P c", k.PlanckLengthSquared(), k.SigmaP()*k.C)
}

// windows spans Planck-scale to cosmic windows.
func windows() [][2]float64 {
	rng := rand.New(rand.NewSource(7))
	out := [][2]float64{{1, 1}, {1.616e-35, 5.39e-44}, {4.4e26, 4.35e17}}
	for i := 0; i < 200; i++ {
		r := math.Pow(10, -35+62*rng.Float64())
		a := math.Pow(10, -44+62*rng.Float64())
		out = append(out, [2]float64{r, a})
	}
	return out
}

func TestAlphaAndNSigmaAreReciprocals(t *testing.T) {
	for _, w := range windows() {
		alpha, err := Default.AlphaSigma(w[0], w[1])
		if err != nil {
			t.Fatal(err)
		}
		n, err := Default.NSigma(w[0], w[1])
		if err != nil {
			t.Fatal(err)
		}
		assertRelClose(t, "alpha*N", alpha*n, 1)
	}
}

func TestLambdaDefinitionsMatch(t *testing.T) {
	for _, w := range windows() {
		la, err := Default.LambdaFromAlpha(w[0], w[1])
		if err != nil {
			t.Fatal(err)
		}
		lw, err := Default.LambdaFromWindow(w[0], w[1])
		if err != nil {
			t.Fatal(err)
		}
		assertRelClose(t, "lambda", la, lw)
	}
}

func TestRunChecksAllPass(t *testing.T) {
	r, age := Default.CosmicWindowNow()
	checks, err := Default.RunChecks(r, age, 1e-12, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(checks))
	}
	if !checks.OK() {
		t.Errorf("failed checks: %v", checks)
	}
}

func TestCosmicWindowNow(t *testing.T) {
	r, age := Default.CosmicWindowNow()
	if math.Abs(r-4.3992e26)/4.3992e26 > 1e-3 {
		t.Errorf("radius = %e", r)
	}
	if math.Abs(age-4.3549e17)/4.3549e17 > 1e-3 {
		t.Errorf("age = %e", age)
	}
}

func TestRelCloseKeepsTinyScaleSensitivity(t *testing.T) {
	a := 1.0e-53
	b := a * (1.0 + 1.0e-9)
	if RelClose(a, b, 1e-12, 0) {
		t.Error("relative check must not treat tiny values as equal")
	}
	if !RelClose(a, b, 1e-12, 1e-50) {
		t.Error("absolute floor should accept")
	}
}

func TestInvalidWindow(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		age    float64
	}{
		{"zero radius", 0, 1},
		{"negative time", 1, -1},
		{"NaN radius", math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Default.NSigma(tt.radius, tt.age); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("NSigma: expected ErrInvalidWindow, got %v", err)
			}
			if _, err := Default.AlphaSigma(tt.radius, tt.age); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("AlphaSigma: expected ErrInvalidWindow, got %v", err)
			}
			if _, err := Default.RunChecks(tt.radius, tt.age, 1e-12, 0); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("RunChecks: expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestClampedWindowHelpers(t *testing.T) {
	if v := Default.WindowAlpha(0, 0); math.IsInf(v, 0) || math.IsNaN(v) {
		t.Errorf("WindowAlpha(0,0) must be finite, got %e", v)
	}
	r, age := Default.CosmicWindowNow()
	alpha, _ := Default.AlphaSigma(r, age)
	assertRelClose(t, "clamped alpha", Default.WindowAlpha(-r, age), alpha)

	lw, _ := Default.LambdaFromWindow(r, age)
	assertRelClose(t, "lambda_eff", Default.LambdaEff(r, age), 3*lw)
}
