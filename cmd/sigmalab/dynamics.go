package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sigmalab/internal/analysis"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/cosmology"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/experiment"
	"github.com/san-kum/sigmalab/internal/kinematic"
	"github.com/san-kum/sigmalab/internal/orbits"
	"github.com/san-kum/sigmalab/internal/storage"
)

var (
	kinMass     float64
	kinDrive    string
	kinRate     float64
	kinDuration float64
	kinDt       float64
	kinLambda   float64

	motorSpin   float64
	motorPoints int

	cosmoAlpha    float64
	cosmoT1       float64
	cosmoSamples  int
	cosmoTargetH  float64
	cosmoSweep    bool
	cosmoSweepLo  float64
	cosmoSweepHi  float64
	cosmoSweepN   int
	cosmoPortrait bool
	cosmoLyapunov bool

	orbitMass   float64
	orbitRadius float64
	orbitImpact float64
	orbitEcc    float64
)

func kinematicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kinematic",
		Short: "accreting core spun up by infall and braked by its mass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("kinematic")
			if err != nil {
				return err
			}
			kc := cfg.Kinematic
			override(cmd, "solar-masses", &kc.SolarMasses, kinMass)
			override(cmd, "drive", &kc.Drive, kinDrive)
			override(cmd, "rate", &kc.Rate, kinRate)
			override(cmd, "duration", &kc.Duration, kinDuration)
			override(cmd, "dt", &kc.Dt, kinDt)
			override(cmd, "lambda", &kc.Lambda, kinLambda)

			k := cfg.Constants
			m0 := kc.SolarMasses * k.SolarMass
			e, err := kinematic.NewEngine(k, m0, kc.Reservoir*m0, logger)
			if err != nil {
				return err
			}
			e.Lambda = kc.Lambda

			reg := experiment.NewRegistry(k)
			drive, err := reg.GetDrive(kc.Drive, e.ControlDim(), experiment.DriveParams{
				Rate:   kc.Rate * m0,
				Period: kc.Period,
			})
			if err != nil {
				return err
			}

			logger.Info("kinematic run started",
				zap.Float64("m0", m0),
				zap.String("drive", kc.Drive),
				zap.Float64("duration", kc.Duration))
			if err := e.Run(cmd.Context(), kc.Duration, kc.Dt, drive); err != nil {
				return err
			}

			title(fmt.Sprintf("core %g M_sun, drive %s", kc.SolarMasses, kc.Drive))
			w := newTab()
			fmt.Fprintf(w, "t\t%.6f s\n", e.Time)
			fmt.Fprintf(w, "core mass\t%.6e kg\n", e.CoreMass)
			fmt.Fprintf(w, "reservoir\t%.6e kg\n", e.Reservoir)
			fmt.Fprintf(w, "omega\t%.6e 1/s\n", e.Omega)
			if e.History.Len() > 0 {
				fmt.Fprintf(w, "peak luminosity\t%.6e W\n", floats.Max(e.History.Luminosity))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			plot("omega [1/s]", e.History.Omega)
			plot("luminosity [W]", e.History.Luminosity)

			h := e.History
			table, err := storage.NewTable([]string{"t", "mass", "omega", "luminosity"}, h.Times, h.Mass, h.Omega, h.Luminosity)
			if err != nil {
				return err
			}
			return save(storage.RunMetadata{
				Model:      "kinematic",
				Integrator: "euler",
				Drive:      kc.Drive,
				Dt:         kc.Dt,
				Duration:   kc.Duration,
				Params:     map[string]float64{"m0": m0, "lambda": kc.Lambda, "rate": kc.Rate},
			}, table)
		},
	}
	cmd.Flags().Float64Var(&kinMass, "solar-masses", 10, "core mass in solar masses")
	cmd.Flags().StringVar(&kinDrive, "drive", "constant", "accretion drive (none, constant, sinusoidal)")
	cmd.Flags().Float64Var(&kinRate, "rate", 0.01, "accretion rate in core masses per second")
	cmd.Flags().Float64Var(&kinDuration, "duration", 1, "duration in s")
	cmd.Flags().Float64Var(&kinDt, "dt", 1e-3, "timestep in s")
	cmd.Flags().Float64Var(&kinLambda, "lambda", kinematic.DefaultLambda, "spin-up efficiency")
	return cmd
}

func motorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "motor",
		Short: "spin against burden sweep and the spin-mass interplay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("kinematic")
			if err != nil {
				return err
			}
			kc := cfg.Kinematic
			override(cmd, "spin", &kc.Spin, motorSpin)
			override(cmd, "points", &kc.Points, motorPoints)
			k := cfg.Constants

			s := kinematic.SweepMotor(k, kc.Spin, kc.BurdenMin, kc.BurdenMax, kc.Points)
			title(fmt.Sprintf("motor at spin %g", s.Spin))
			plot("net potential [N]", s.NetPotential)
			plot("unitary entropy", s.UnitaryEntropy)
			plot("naive entropy", s.NaiveEntropy)
			fmt.Printf("c0 at burden %g: %.6e\n\n", s.Burden[len(s.Burden)-1], s.C0[len(s.C0)-1])

			r := kinematic.SpinMassInterplay(k, kc.SolarMasses*k.SolarMass, kc.Points)
			title("spin-mass interplay")
			plot("transformation rate", r.TransformationRate)
			return nil
		},
	}
	cmd.Flags().Float64Var(&motorSpin, "spin", 80, "spin slider in [0, 100]")
	cmd.Flags().IntVar(&motorPoints, "points", 50, "sweep points")
	return cmd
}

func cosmologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cosmology",
		Short: "two-phase (a, H, T) universe and its Hubble tension",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("cosmology")
			if err != nil {
				return err
			}
			cc := cfg.Cosmology
			override(cmd, "alpha", &cc.Alpha, cosmoAlpha)
			override(cmd, "t1", &cc.T1, cosmoT1)
			override(cmd, "samples", &cc.Samples, cosmoSamples)
			override(cmd, "target-h", &cc.TargetH, cosmoTargetH)

			ctx := cmd.Context()
			model := cosmology.NewModel(cc.Params)
			sol, err := model.Simulate(ctx, cc.T0, cc.T1, dynamo.State(cc.Initial), cc.Samples, logger)
			if err != nil {
				return err
			}
			rep, err := sol.Analyze()
			if err != nil {
				return err
			}

			title(fmt.Sprintf("cosmology alpha = %g, t in [%g, %g]", cc.Alpha, cc.T0, cc.T1))
			w := newTab()
			fmt.Fprintf(w, "H expansion\t%.4f\n", rep.HExpansion)
			fmt.Fprintf(w, "H deflation\t%.4f\n", rep.HDeflation)
			fmt.Fprintf(w, "H mean\t%.4f\n", rep.HMean)
			fmt.Fprintf(w, "tension\t%.4f\n", rep.Tension)
			fmt.Fprintf(w, "expansion fraction\t%.4f\n", rep.ExpansionFraction)
			fmt.Fprintf(w, "measured H (CMB)\t%.4f\n", sol.MeasuredH("CMB"))
			fmt.Fprintf(w, "measured H (SNe)\t%.4f\n", sol.MeasuredH("SNe"))
			fmt.Fprintf(w, "transitions\t%v\n", roundAll(sol.Transitions(), 2))
			if p, err := sol.DominantPeriod(); err == nil {
				fmt.Fprintf(w, "dominant period\t%.4f\n", p)
			}
			si := cosmology.SICrossCheck(cfg.Constants, cc.HExpansion, cc.HDeflation)
			fmt.Fprintf(w, "chi(H_exp)\t%.4e\n", si.Chi73)
			fmt.Fprintf(w, "chi(H_def)\t%.4e\n", si.Chi67)
			if cosmoLyapunov {
				fmt.Fprintf(w, "lyapunov\t%.6f\n", model.Lyapunov(dynamo.State(cc.Initial), 0.01, cc.T1-cc.T0))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()

			plot("scale factor a", sol.A)
			plot("physical H", sol.PhysicalH())
			plot("temperature T", sol.T)

			if z, err := sol.Redshift(cc.TargetH); err == nil && len(z.Z) > 1 {
				j := cosmology.Jerk(z.Z, z.H)
				plot(fmt.Sprintf("jerk indicator vs z (anchored at H = %g)", cc.TargetH), j.Jerk)
			}

			if cosmoPortrait {
				title("phase portrait (T, H)")
				fmt.Println(sol.Portrait().ASCII(70, 20))
			}
			if cosmoSweep {
				points, err := model.SweepAlpha(ctx, cosmoSweepLo, cosmoSweepHi, cosmoSweepN, cc.T1, cc.Samples)
				if err != nil {
					return err
				}
				title(fmt.Sprintf("late H extrema for alpha in [%g, %g]", cosmoSweepLo, cosmoSweepHi))
				fmt.Println(analysis.BifurcationASCII(points, 70, 20))
			}

			table, err := storage.NewTable([]string{"t", "a", "H", "T", "H_phys"}, sol.Times, sol.A, sol.H, sol.T, sol.PhysicalH())
			if err != nil {
				return err
			}
			return save(storage.RunMetadata{
				Model:      "cosmology",
				Integrator: "rk45",
				Duration:   cc.T1 - cc.T0,
				Params:     model.GetParams(),
				Metrics: map[string]float64{
					"h_expansion": rep.HExpansion,
					"h_deflation": rep.HDeflation,
					"tension":     rep.Tension,
				},
			}, table)
		},
	}
	cmd.Flags().Float64Var(&cosmoAlpha, "alpha", 3.5, "equation of state sharpness")
	cmd.Flags().Float64Var(&cosmoT1, "t1", 200, "end time")
	cmd.Flags().IntVar(&cosmoSamples, "samples", 2000, "output samples")
	cmd.Flags().Float64Var(&cosmoTargetH, "target-h", 73, "physical H that anchors z = 0")
	cmd.Flags().BoolVar(&cosmoPortrait, "portrait", false, "draw the (T, H) phase portrait")
	cmd.Flags().BoolVar(&cosmoLyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	cmd.Flags().BoolVar(&cosmoSweep, "sweep", false, "sweep alpha and draw the late-time extrema")
	cmd.Flags().Float64Var(&cosmoSweepLo, "sweep-lo", 1, "lowest alpha of the sweep")
	cmd.Flags().Float64Var(&cosmoSweepHi, "sweep-hi", 8, "highest alpha of the sweep")
	cmd.Flags().IntVar(&cosmoSweepN, "sweep-steps", 16, "alpha values in the sweep")
	return cmd
}

func roundAll(xs []float64, digits int) []float64 {
	p := math.Pow(10, float64(digits))
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Round(x*p) / p
	}
	return out
}

func orbitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "orbit [particle|photon|precession]",
		Short:     "sigma_P-softened orbits, light bending and perihelion advance",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"particle", "photon", "precession"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("orbits")
			if err != nil {
				return err
			}
			oc := cfg.Orbits
			k := cfg.Constants
			ctx := cmd.Context()

			switch args[0] {
			case "particle":
				override(cmd, "solar-masses", &oc.Particle.SolarMasses, orbitMass)
				override(cmd, "radius", &oc.Particle.RadiusRs, orbitRadius)
				o, err := orbits.Particle(ctx, k, oc.Particle, logger)
				if err != nil {
					return err
				}
				return reportOrbit("particle", o, k, oc.Particle.SolarMasses)
			case "photon":
				override(cmd, "solar-masses", &oc.Lens.SolarMasses, orbitMass)
				override(cmd, "impact", &oc.Lens.ImpactRs, orbitImpact)
				lens, err := orbits.Photon(ctx, k, oc.Lens, logger)
				if err != nil {
					return err
				}
				title(fmt.Sprintf("photon at b = %g r_s", oc.Lens.ImpactRs))
				w := newTab()
				fmt.Fprintf(w, "r_s\t%.6e m\n", lens.Rs)
				fmt.Fprintf(w, "deflection\t%.6e rad\n", lens.Deflection)
				fmt.Fprintf(w, "weak field 2 r_s / b\t%.6e rad\n", orbits.WeakFieldDeflection(lens.Rs, lens.Impact))
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Println()
				fmt.Println(analysis.NewPortrait(lens.X, lens.Y).ASCII(70, 20))
				table, err := storage.NewTable([]string{"t", "x", "y"}, lens.Times, lens.X, lens.Y)
				if err != nil {
					return err
				}
				return save(storage.RunMetadata{
					Model:      "photon",
					Integrator: "verlet",
					Duration:   oc.Lens.Duration,
					Params:     map[string]float64{"impact_rs": oc.Lens.ImpactRs, "deflection": lens.Deflection},
				}, table)
			case "precession":
				override(cmd, "ecc", &oc.Precession.Eccentricity, orbitEcc)
				override(cmd, "radius", &oc.Precession.SemiMajorRs, orbitRadius)
				p, err := orbits.PerihelionShift(ctx, k, oc.Precession, logger)
				if err != nil {
					return err
				}
				title(fmt.Sprintf("precession a = %g r_s, e = %g", oc.Precession.SemiMajorRs, oc.Precession.Eccentricity))
				w := newTab()
				fmt.Fprintf(w, "perihelia\t%d\n", len(p.Perihelia))
				fmt.Fprintf(w, "mean shift\t%.6e rad/orbit\n", p.Mean)
				fmt.Fprintf(w, "predicted\t%.6e rad/orbit\n", p.Predicted)
				if p.Predicted != 0 {
					fmt.Fprintf(w, "ratio\t%.4f\n", p.Mean/p.Predicted)
				}
				fmt.Fprintf(w, "period\t%.6e s\n", p.Period)
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Println()
				plot("r [m]", p.Orbit.R)
				return nil
			}
			return fmt.Errorf("unknown orbit: %s", args[0])
		},
	}
	cmd.Flags().Float64Var(&orbitMass, "solar-masses", 10, "central mass in solar masses")
	cmd.Flags().Float64Var(&orbitRadius, "radius", 3, "start radius (particle) or semi-major axis (precession) in r_s")
	cmd.Flags().Float64Var(&orbitImpact, "impact", 2.5, "photon impact parameter in r_s")
	cmd.Flags().Float64Var(&orbitEcc, "ecc", 0.3, "eccentricity")
	return cmd
}

func reportOrbit(name string, o *orbits.Orbit, k constants.Constants, solarMasses float64) error {
	n := o.Len()
	if n == 0 {
		return fmt.Errorf("%s orbit has no samples", name)
	}
	l := o.AngularMomentum()

	title(fmt.Sprintf("%s around %g M_sun", name, solarMasses))
	w := newTab()
	fmt.Fprintf(w, "r_s\t%.6e m\n", o.Rs)
	fmt.Fprintf(w, "r_min / r_s\t%.6f\n", o.MinRadius()/o.Rs)
	fmt.Fprintf(w, "r_final / r_s\t%.6f\n", o.R[n-1]/o.Rs)
	fmt.Fprintf(w, "sigma_P c / r_s\t%.6e\n", k.SigmaP()*k.C/o.Rs)
	if l[0] != 0 {
		fmt.Fprintf(w, "angular momentum drift\t%.3e\n", math.Abs(l[n-1]-l[0])/math.Abs(l[0]))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	xs, ys := o.Cartesian()
	fmt.Println(analysis.NewPortrait(xs, ys).ASCII(70, 20))

	table, err := storage.NewTable([]string{"t", "r", "phi", "v_r", "v_phi"}, o.Times, o.R, o.Phi, o.VR, o.VPhi)
	if err != nil {
		return err
	}
	return save(storage.RunMetadata{
		Model:      name,
		Integrator: "rk45",
		Params:     map[string]float64{"solar_masses": solarMasses},
	}, table)
}
