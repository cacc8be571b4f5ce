package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/evaporation"
	"github.com/san-kum/sigmalab/internal/qinfo"
	"github.com/san-kum/sigmalab/internal/sigmap"
	"github.com/san-kum/sigmalab/internal/spinbrake"
	"github.com/san-kum/sigmalab/internal/storage"
)

var (
	evapMass     float64
	evapAlpha    float64
	evapSteps    int
	evapRecycle  bool
	evapKeepTail bool
	evapFull     bool
	evapSweep    bool

	cycleCount   int
	cycleQMSteps int
	cycleStart   float64
	cycleRemnant float64

	brakeIntegrator string
	brakeSteps      int
	brakeDuration   float64
	pageTime        float64

	bitThreshold  float64
	bitComplexity int
)

func evaporateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaporate",
		Short: "semiclassical and sigma_P-smoothed Hawking evaporation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("evaporation")
			if err != nil {
				return err
			}
			ec := cfg.Evaporation
			override(cmd, "solar-masses", &ec.SolarMasses, evapMass)
			override(cmd, "alpha", &ec.Alpha, evapAlpha)
			override(cmd, "steps", &ec.Steps, evapSteps)
			override(cmd, "recycle", &ec.Recycle, evapRecycle)
			override(cmd, "keep-tail", &ec.KeepTail, evapKeepTail)

			k := cfg.Constants
			ev := evaporation.New(blackhole.New(k), evaporation.WithLogger(logger))
			m0 := ec.SolarMasses * k.SolarMass
			ctx := cmd.Context()

			logger.Info("evaporation started",
				zap.Float64("m0", m0),
				zap.Float64("alpha", ec.Alpha),
				zap.Int("steps", ec.Steps))

			semi, err := ev.Semiclassical(m0, ec.Steps)
			if err != nil {
				return err
			}
			q, err := ev.Quantized(ctx, m0, ec.Params)
			if err != nil {
				return err
			}

			title(fmt.Sprintf("M0 = %g M_sun = %.4e kg", ec.SolarMasses, m0))
			w := newTab()
			fmt.Fprintf(w, "semiclassical tau\t%.6e s\t%.6e yr\n", semi.Tau, semi.Tau/k.Year())
			fmt.Fprintf(w, "tau0\t%.6e s\t\n", q.Tau0)
			fmt.Fprintf(w, "tau_eff\t%.6e s\t%.6f tau0\n", q.TauEff, q.TauEff/q.Tau0)
			fmt.Fprintf(w, "remnant index\t%d\t\n", q.RemnantIndex)
			fmt.Fprintf(w, "remnant entropy\t%.6e J/K\t\n", q.RemnantEntropy)
			fmt.Fprintf(w, "final mass\t%.6e kg\t\n", q.Mass[q.Len()-1])
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()

			mass := make([]float64, q.Len())
			for i, m := range q.Mass {
				mass[i] = m / m0
			}
			plot("M(t) / M0", mass)
			plot("radiation entropy [J/K]", q.RadiationEntropy)

			if evapFull {
				fq, err := ev.FullQuantum(ctx, m0, 0)
				if err != nil {
					return err
				}
				title("full quantum")
				fmt.Printf("tau_eff = %.6e s (%.6f tau0), remnant index %d\n\n", fq.TauEff, fq.TauEff/fq.Tau0, fq.RemnantIndex)
				plot("full quantum radiation entropy [J/K]", fq.RadiationEntropy)
			}

			if evapSweep {
				points, err := ev.AlphaSweep(ctx, m0, ec.Alphas, ec.Params)
				if err != nil {
					return err
				}
				title("alpha sweep")
				w := newTab()
				fmt.Fprintln(w, "ALPHA\tTAU_EFF/TAU0\tSAMPLES\tREMNANT INDEX")
				for _, p := range points {
					fmt.Fprintf(w, "%g\t%.6f\t%d\t%d\n", p.Alpha, p.Run.TauEff/p.Run.Tau0, p.Run.Len(), p.Run.RemnantIndex)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			table, err := storage.NewTable(
				[]string{"t", "mass", "temperature", "entropy", "radiation_entropy"},
				q.Times, q.Mass, q.Temperature, q.Entropy, q.RadiationEntropy)
			if err != nil {
				return err
			}
			return save(storage.RunMetadata{
				Model: "evaporation",
				Params: map[string]float64{
					"m0":      m0,
					"alpha":   ec.Alpha,
					"gamma":   ec.Gamma,
					"tau0":    q.Tau0,
					"tau_eff": q.TauEff,
				},
			}, table)
		},
	}
	cmd.Flags().Float64Var(&evapMass, "solar-masses", 1, "initial mass in solar masses")
	cmd.Flags().Float64Var(&evapAlpha, "alpha", evaporation.DefaultAlpha, "smoothing strength")
	cmd.Flags().IntVar(&evapSteps, "steps", evaporation.DefaultSteps, "grid points")
	cmd.Flags().BoolVar(&evapRecycle, "recycle", false, "extend the window past tau0")
	cmd.Flags().BoolVar(&evapKeepTail, "keep-tail", false, "keep the samples after the remnant is reached")
	cmd.Flags().BoolVar(&evapFull, "full", false, "also run the full quantum variant")
	cmd.Flags().BoolVar(&evapSweep, "sweep", false, "sweep the configured alphas")
	return cmd
}

func cyclesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "reload the remnant core and evaporate it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("cycles")
			if err != nil {
				return err
			}
			cp := cfg.Cycles
			override(cmd, "cycles", &cp.Cycles, cycleCount)
			override(cmd, "qm-steps", &cp.QMSteps, cycleQMSteps)
			override(cmd, "start-mass", &cp.StartMass, cycleStart)

			k := cfg.Constants
			mrem := k.PlanckMass()
			override(cmd, "remnant", &mrem, cycleRemnant)

			ev := evaporation.New(blackhole.New(k), evaporation.WithLogger(logger))
			cycles, err := ev.RemnantCycles(cmd.Context(), mrem, cp)
			if err != nil {
				return err
			}

			title(fmt.Sprintf("%d cycles, M_rem = %.4e kg", len(cycles), mrem))
			w := newTab()
			fmt.Fprintln(w, "CYCLE\tTAU0 [s]\tTAU_EFF [s]\tSAMPLES\tPEAK S_QM [bits]\tFINAL S_QM")
			for _, c := range cycles {
				peak, final := 0.0, 0.0
				if n := len(c.QM.Entropy); n > 0 {
					peak, final = floats.Max(c.QM.Entropy), c.QM.Entropy[n-1]
				}
				fmt.Fprintf(w, "%d\t%.4e\t%.4e\t%d\t%.4f\t%.2e\n",
					c.Index, c.Run.Tau0, c.Run.TauEff, c.Run.Len(), peak, final)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			if len(cycles) > 0 {
				plot("qubit Page curve [bits]", cycles[0].QM.Entropy)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cycleCount, "cycles", 3, "number of cycles")
	cmd.Flags().IntVar(&cycleQMSteps, "qm-steps", 128, "samples of the qubit Page curve")
	cmd.Flags().Float64Var(&cycleStart, "start-mass", 0, "restart mass in kg (default: the remnant)")
	cmd.Flags().Float64Var(&cycleRemnant, "remnant", 0, "remnant mass in kg (default: Planck mass)")
	return cmd
}

func spinbrakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spinbrake",
		Short: "accretion spin-up against sigma_P braking",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("spinbrake")
			if err != nil {
				return err
			}
			p := cfg.SpinBrake
			override(cmd, "integrator", &p.Integrator, brakeIntegrator)
			override(cmd, "steps", &p.Steps, brakeSteps)
			override(cmd, "duration", &p.Duration, brakeDuration)

			m := spinbrake.New(sigmap.New(cfg.Constants), logger)
			s, err := m.Simulate(cmd.Context(), p)
			if err != nil {
				return err
			}
			n := s.Len()
			if n == 0 {
				return fmt.Errorf("spin-brake run produced no samples")
			}

			title(fmt.Sprintf("spin-brake (%s, %d samples)", p.Integrator, n))
			w := newTab()
			fmt.Fprintf(w, "t_final\t%.6f\n", s.Times[n-1])
			fmt.Fprintf(w, "spin\t%.6f\n", s.Spin[n-1])
			fmt.Fprintf(w, "mass\t%.6f\n", s.Mass[n-1])
			fmt.Fprintf(w, "entropy\t%.6f\n", s.Entropy[n-1])
			fmt.Fprintf(w, "peak entropy\t%.6f\n", floats.Max(s.Entropy))
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			plot("spin", s.Spin)
			plot("entropy", s.Entropy)

			if cmd.Flags().Changed("page-time") {
				_, sBH, sRad := spinbrake.ToyPageCurve(200, pageTime)
				plot("toy Page curve: hole entropy", sBH)
				plot("toy Page curve: radiation entropy", sRad)
			}

			table, err := storage.NewTable([]string{"t", "spin", "mass", "entropy"}, s.Times, s.Spin, s.Mass, s.Entropy)
			if err != nil {
				return err
			}
			return save(storage.RunMetadata{
				Model:      "spinbrake",
				Integrator: p.Integrator,
				Duration:   p.Duration,
				Params: map[string]float64{
					"accretion_rate":   p.AccretionRate,
					"brake_efficiency": p.BrakeEfficiency,
					"steps":            float64(p.Steps),
				},
			}, table)
		},
	}
	cmd.Flags().StringVar(&brakeIntegrator, "integrator", "rk4", "mass channel integrator (euler, rk4)")
	cmd.Flags().IntVar(&brakeSteps, "steps", 200, "accepted steps")
	cmd.Flags().Float64Var(&brakeDuration, "duration", 10, "duration")
	cmd.Flags().Float64Var(&pageTime, "page-time", 50, "also draw the toy Page curve turning at this time")
	return cmd
}

func bitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bits",
		Short: "decide and log bits from amplitude vectors",
	}

	decide := &cobra.Command{
		Use:   "decide [prob...]",
		Short: "decide a bit and append it to the log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			probs := make([]float64, len(args))
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("bad amplitude %q: %w", a, err)
				}
				probs[i] = v
			}

			complexity := len(probs)
			override(cmd, "complexity", &complexity, bitComplexity)

			log := storage.NewBitLog(filepath.Join(dataDir, "bits.jsonl"))
			ev, err := log.Append(storage.BitEvent{
				InputComplexity: complexity,
				Probs:           probs,
				Bit:             qinfo.DecideBit(probs, bitThreshold),
				PayloadSummary: map[string]string{
					"source":    "cli",
					"threshold": strconv.FormatFloat(bitThreshold, 'g', -1, 64),
				},
			})
			if err != nil {
				return err
			}
			logger.Info("bit decided", zap.String("event_id", ev.EventID), zap.Int("bit", ev.Bit))
			fmt.Printf("%s  bit=%d\n", ev.EventID, ev.Bit)
			return nil
		},
	}
	decide.Flags().Float64Var(&bitThreshold, "threshold", storage.DefaultBitThreshold, "amplitude threshold")
	decide.Flags().IntVar(&bitComplexity, "complexity", 0, "input complexity (default: number of amplitudes)")

	show := &cobra.Command{
		Use:   "log",
		Short: "print the bit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := storage.NewBitLog(filepath.Join(dataDir, "bits.jsonl")).Read()
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("no events")
				return nil
			}
			w := newTab()
			fmt.Fprintln(w, "TIME\tEVENT\tCOMPLEXITY\tBIT")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
					ev.Timestamp.Format("2006-01-02 15:04:05"), ev.EventID, ev.InputComplexity, ev.Bit)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(decide, show)
	return cmd
}
