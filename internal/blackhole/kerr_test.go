package blackhole

import (
	"errors"
	"math"
	"testing"
)

func TestKerrSchwarzschildLimit(t *testing.T) {
	m := 10 * Default.K.SolarMass
	k, err := Default.NewKerr(m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if rel(k.RPlus, Default.SchwarzschildRadius(m)) > 1e-12 {
		t.Errorf("r_+ = %e, r_s = %e", k.RPlus, Default.SchwarzschildRadius(m))
	}
	if k.RMinus != 0 {
		t.Errorf("r_- = %e, want 0", k.RMinus)
	}
	if rel(k.TH, Default.HawkingTemperature(m)) > 1e-12 {
		t.Errorf("T_H = %e, want %e", k.TH, Default.HawkingTemperature(m))
	}
}

func TestKerrSpinCoolsHole(t *testing.T) {
	m := 10 * Default.K.SolarMass
	prev := math.Inf(1)
	for _, chi := range []float64{0, 0.3, 0.7, 0.99} {
		k, err := Default.NewKerr(m, chi)
		if err != nil {
			t.Fatal(err)
		}
		if k.TH >= prev {
			t.Errorf("T_H should fall with spin, chi=%f gives %e", chi, k.TH)
		}
		if k.RPlus < k.RMinus {
			t.Errorf("horizons out of order at chi=%f", chi)
		}
		prev = k.TH
	}
}

func TestKerrRejectsBadSpin(t *testing.T) {
	for _, chi := range []float64{-0.1, 1, 1.5, math.NaN()} {
		if _, err := Default.NewKerr(1e31, chi); !errors.Is(err, ErrSpinOutOfRange) {
			t.Errorf("chi=%f: expected ErrSpinOutOfRange, got %v", chi, err)
		}
	}
	if _, err := Default.NewKerr(0, 0.5); !errors.Is(err, ErrNonPositiveMass) {
		t.Errorf("expected ErrNonPositiveMass, got %v", err)
	}
}

func TestC0(t *testing.T) {
	k, err := Default.NewKerr(10*Default.K.SolarMass, 0.7)
	if err != nil {
		t.Fatal(err)
	}
	tau, length := 1e-3, 1.0
	epsT, epsS := k.EpsilonTerms(tau, length)

	if rel(k.C0Temporal(tau), math.Pi*math.Pi/6*epsT*epsT) > 1e-12 {
		t.Error("temporal c0 mismatch")
	}

	wantS := 0.5 * epsS * epsS * 0.376
	if rel(k.C0Spatial(length, DefaultModes), wantS) > 1e-12 {
		t.Errorf("spatial c0 = %e, want %e", k.C0Spatial(length, DefaultModes), wantS)
	}

	scaled := []Mode{{0.8, 5}, {0.4, 3}, {0.2, 2}}
	if rel(k.C0Spatial(length, scaled), wantS) > 1e-12 {
		t.Error("weights must be normalised")
	}

	if k.C0Spatial(length, nil) != 0 || k.C0Spatial(length, []Mode{{1, 0}}) != 0 {
		t.Error("empty or zero-weight modes must give zero")
	}

	if rel(k.C0(tau, length, DefaultModes), k.C0Temporal(tau)+wantS) > 1e-12 {
		t.Error("total c0 must be the sum of both pieces")
	}
}
