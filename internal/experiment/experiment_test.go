package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/integrators"
)

func newExperiment(t *testing.T, cfg Config) *Experiment {
	t.Helper()
	e := New(cfg, NewRegistry(constants.Default), nil)
	if err := e.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return e
}

func TestListModels(t *testing.T) {
	r := NewRegistry(constants.Default)
	want := []string{"cosmology", "evaporation", "kinematic", "particle", "photon", "precession"}
	if diff := cmp.Diff(want, r.ListModels()); diff != "" {
		t.Errorf("models mismatch (-want +got):\n%s", diff)
	}
	for _, m := range want {
		if r.Describe(m) == "" {
			t.Errorf("%s has no description", m)
		}
		sys, x0, err := r.GetModel(m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if len(x0) != sys.StateDim() {
			t.Errorf("%s: initial state has %d components, want %d", m, len(x0), sys.StateDim())
		}
	}
	if diff := cmp.Diff([]string{"constant", "none", "regulator", "sinusoidal"}, r.ListDrives()); diff != "" {
		t.Errorf("drives mismatch (-want +got):\n%s", diff)
	}
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		is   error
	}{
		{"unknown model", Config{Model: "pendulum", Integrator: "rk4"}, nil},
		{"unknown integrator", Config{Model: "cosmology", Integrator: "rk9"}, integrators.ErrUnknownIntegrator},
		{"unknown drive", Config{Model: "kinematic", Integrator: "euler", Drive: "turbo"}, nil},
		{"bad param", Config{Model: "cosmology", Integrator: "rk4", Params: map[string]float64{"omega": 1}}, nil},
		{"wrong dimension", Config{Model: "cosmology", Integrator: "rk4", InitState: []float64{1, 2}}, dynamo.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.cfg, NewRegistry(constants.Default), nil).Setup()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	e := New(Config{}, NewRegistry(constants.Default), nil)
	if _, err := e.Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("err = %v, want ErrNotSetup", err)
	}
}

func TestCosmologyRun(t *testing.T) {
	e := newExperiment(t, Config{
		Model:      "cosmology",
		Integrator: "rk4",
		Dt:         0.01,
		Duration:   10,
		Params:     map[string]float64{"alpha": 3.5},
	})
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 1000 {
		t.Errorf("steps = %d, want 1000", res.StepsTaken)
	}
	if res.Metrics["a_negative"] != 0 {
		t.Errorf("scale factor went negative %g times", res.Metrics["a_negative"])
	}
	for _, name := range []string{"H_peak", "T_peak", "bounded"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing %s metric", name)
		}
	}
	if diff := cmp.Diff([]string{"a", "H", "T"}, e.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaporationReachesRemnant(t *testing.T) {
	e := newExperiment(t, Config{Model: "evaporation", Integrator: "rk4", Dt: 1e-3, Duration: 1})
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	mp := constants.Default.PlanckMass()
	if got := res.Final()[0]; got != mp {
		t.Errorf("final mass = %g, want the Planck mass %g", got, mp)
	}
	if res.Metrics["mass_negative"] != 0 {
		t.Error("projector let the mass go negative")
	}
	if lost := res.Metrics["mass_lost"]; lost < 0.99 || lost > 1 {
		t.Errorf("mass_lost = %g, want nearly all of it", lost)
	}
}

func TestKinematicDrive(t *testing.T) {
	e := newExperiment(t, Config{
		Model:      "kinematic",
		Integrator: "euler",
		Drive:      "constant",
		Dt:         1e-3,
		Duration:   1,
		DriveOpts:  DriveParams{Rate: 1e29},
	})
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Metrics["control_effort"]; math.Abs(got-1e29) > 1e17 {
		t.Errorf("control effort = %g, want 1e29", got)
	}
	if res.Metrics["omega_negative"] != 0 {
		t.Error("omega went negative")
	}
	first, last := res.States[0], res.Final()
	if math.Abs((last[0]-first[0])/1e29-1) > 1e-9 {
		t.Errorf("core gained %g kg, want 1e29", last[0]-first[0])
	}
}

func TestParticleConservesAngularMomentum(t *testing.T) {
	e := newExperiment(t, Config{Model: "particle", Integrator: "rk4", Dt: 1e-7, Duration: 1e-4})
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d := res.Metrics["l_drift"]; d > 1e-9 {
		t.Errorf("l_drift = %g", d)
	}
}

func TestEnsemble(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := Config{Model: "cosmology", Integrator: "rk4", Dt: 0.01, Duration: 2, Seed: 7}
	e := newExperiment(t, cfg)

	single, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	runs, err := e.Ensemble(context.Background(), 4, 0.01, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 4 {
		t.Fatalf("runs = %d, want 4", len(runs))
	}
	if diff := cmp.Diff(single.Final(), runs[0].Final()); diff != "" {
		t.Errorf("unperturbed copy differs (-single +ensemble):\n%s", diff)
	}
	for i := 1; i < len(runs); i++ {
		if cmp.Equal(runs[0].States[0], runs[i].States[0]) {
			t.Errorf("copy %d was not perturbed", i)
		}
	}

	again, err := newExperiment(t, cfg).Ensemble(context.Background(), 4, 0.01, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range runs {
		if diff := cmp.Diff(runs[i].Final(), again[i].Final()); diff != "" {
			t.Errorf("copy %d not reproducible from the seed:\n%s", i, diff)
		}
	}
}
