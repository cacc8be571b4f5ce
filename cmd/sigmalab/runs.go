package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/analysis"
	"github.com/san-kum/sigmalab/internal/config"
	"github.com/san-kum/sigmalab/internal/experiment"
	"github.com/san-kum/sigmalab/internal/storage"
)

var (
	dt          float64
	duration    float64
	integrator  string
	drive       string
	seed        int64
	adaptive    bool
	runParams   map[string]string
	initState   []float64
	driveRate   float64
	drivePeriod float64
	kp          float64
	ki          float64
	kd          float64
	target      float64
	ensembleN   int
	spread      float64
	workers     int

	phaseAxes    string
	spectrumCol  string
	exportFormat string
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a registered system with any integrator and drive",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&drive, "drive", "none", "drive")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping")
	cmd.Flags().StringToStringVar(&runParams, "param", nil, "model parameter override name=value")
	cmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state")
	cmd.Flags().Float64Var(&driveRate, "rate", 0, "drive rate")
	cmd.Flags().Float64Var(&drivePeriod, "period", 1, "sinusoidal drive period")
	cmd.Flags().Float64Var(&kp, "kp", 1, "regulator kp")
	cmd.Flags().Float64Var(&ki, "ki", 0, "regulator ki")
	cmd.Flags().Float64Var(&kd, "kd", 0, "regulator kd")
	cmd.Flags().Float64Var(&target, "target", 0, "regulator target")
	cmd.Flags().IntVar(&ensembleN, "ensemble", 0, "run this many perturbed copies")
	cmd.Flags().Float64Var(&spread, "spread", 0.01, "relative perturbation of ensemble copies")
	cmd.Flags().IntVar(&workers, "workers", 0, "ensemble workers (0: one per CPU)")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig("run")
	if err != nil {
		return err
	}
	rc := cfg.Run
	if len(args) > 0 {
		rc.Model = args[0]
	}
	override(cmd, "dt", &rc.Dt, dt)
	override(cmd, "time", &rc.Duration, duration)
	override(cmd, "integrator", &rc.Integrator, integrator)
	override(cmd, "drive", &rc.Drive, drive)
	override(cmd, "adaptive", &rc.Adaptive, adaptive)
	override(cmd, "init", &rc.InitState, initState)
	override(cmd, "rate", &rc.DriveRate, driveRate)
	override(cmd, "period", &rc.Period, drivePeriod)
	if rc.Seed == 0 || cmd.Flags().Changed("seed") {
		rc.Seed = seed
	}

	params := make(map[string]float64, len(rc.Params)+len(runParams))
	for name, v := range rc.Params {
		params[name] = v
	}
	for name, raw := range runParams {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("param %s: %w", name, err)
		}
		params[name] = v
	}

	exp := experiment.New(experiment.Config{
		Model:      rc.Model,
		Integrator: rc.Integrator,
		Drive:      rc.Drive,
		InitState:  rc.InitState,
		Dt:         rc.Dt,
		Duration:   rc.Duration,
		Adaptive:   rc.Adaptive,
		Seed:       rc.Seed,
		Params:     params,
		DriveOpts: experiment.DriveParams{
			Rate:   rc.DriveRate,
			Period: rc.Period,
			Kp:     kp,
			Ki:     ki,
			Kd:     kd,
			Target: target,
		},
	}, experiment.NewRegistry(cfg.Constants), logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", rc.Model)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d (rejected %d)\n", result.StepsTaken, result.Rejected)
	for _, e := range result.Errors {
		fmt.Println(failStyle.Render("stopped:"), e)
	}
	fmt.Println("\nmetrics:")
	w := newTab()
	for _, name := range sortedNames(result.Metrics) {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, result.Metrics[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if ensembleN > 1 {
		runs, err := exp.Ensemble(cmd.Context(), ensembleN, spread, workers)
		if err != nil {
			return err
		}
		fmt.Println()
		title(fmt.Sprintf("ensemble of %d (spread %g)", ensembleN, spread))
		w := newTab()
		fmt.Fprintf(w, "COPY\t%s\n", strings.Join(exp.Labels(), "\t"))
		for i, r := range runs {
			vals := make([]string, 0, len(r.Final()))
			for _, v := range r.Final() {
				vals = append(vals, fmt.Sprintf("%.6g", v))
			}
			fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(vals, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return store(storage.RunMetadata{
		Model:      rc.Model,
		Seed:       rc.Seed,
		Dt:         rc.Dt,
		Duration:   rc.Duration,
		Integrator: rc.Integrator,
		Drive:      rc.Drive,
		Params:     params,
		Metrics:    result.Metrics,
	}, storage.ResultTable(result, exp.Labels()))
}

// finite drops NaN and infinite values, which JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := newTab()
			fmt.Fprintln(w, "ID\tMODEL\tTIME\tROWS\tDURATION\tDT\tINTEG\tDRIVE")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%s\t%s\n",
					run.ID,
					run.Model,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Rows,
					run.Duration,
					run.Dt,
					run.Integrator,
					run.Drive,
				)
			}
			return w.Flush()
		},
	}
}

func plotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			table, err := st.LoadTable(args[0])
			if err != nil {
				return err
			}
			if len(table.Rows) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("model: %s\n", meta.Model)
			fmt.Println(dimStyle.Render(fmt.Sprintf("samples: %d", len(table.Rows))))
			fmt.Println()

			if phaseAxes != "" {
				x, y, ok := strings.Cut(phaseAxes, ",")
				if !ok {
					return fmt.Errorf("--phase wants two column names, got %q", phaseAxes)
				}
				xs, ys := table.Column(x), table.Column(y)
				if xs == nil || ys == nil {
					return fmt.Errorf("unknown column in %q (have %v)", phaseAxes, table.Columns)
				}
				title(fmt.Sprintf("%s vs %s", y, x))
				fmt.Println(analysis.NewPortrait(xs, ys).ASCII(70, 20))
				return nil
			}

			if spectrumCol != "" {
				data, ts := table.Column(spectrumCol), table.Column("t")
				if data == nil || len(ts) < 2 {
					return fmt.Errorf("unknown column %q (have %v)", spectrumCol, table.Columns)
				}
				spec, err := analysis.PowerSpectrum(data, ts[1]-ts[0])
				if err != nil {
					return err
				}
				plot(fmt.Sprintf("power spectrum (%s)", spectrumCol), spec.Power)
				if f := analysis.DominantFrequency(spec); f > 0 {
					fmt.Printf("dominant frequency: %.6g\nperiod: %.6g\n", f, 1/f)
				}
				return nil
			}

			const maxPlots = 6
			shown := 0
			for _, name := range table.Columns {
				if name == "t" || shown == maxPlots {
					continue
				}
				plot(name, table.Column(name))
				shown++
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&phaseAxes, "phase", "", "phase portrait of two columns, e.g. T,H")
	cmd.Flags().StringVar(&spectrumCol, "spectrum", "", "power spectrum of a column")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json or csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			switch exportFormat {
			case "json":
				return st.ExportJSON(args[0], os.Stdout)
			case "csv":
				table, err := st.LoadTable(args[0])
				if err != nil {
					return err
				}
				w := csv.NewWriter(os.Stdout)
				if err := w.Write(table.Columns); err != nil {
					return err
				}
				for _, row := range table.Rows {
					rec := make([]string, len(row))
					for i, v := range row {
						rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
					}
					if err := w.Write(rec); err != nil {
						return err
					}
				}
				w.Flush()
				return w.Error()
			}
			return fmt.Errorf("unknown format: %s", exportFormat)
		},
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "json or csv")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [section]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := config.Models()
			if len(args) > 0 {
				sections = args
			}
			for _, s := range sections {
				names := config.ListPresets(s)
				if len(names) == 0 {
					fmt.Printf("no presets for: %s\n", s)
					continue
				}
				fmt.Printf("%s: %s\n", titleStyle.Render(s), strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			logger.Info("config written", zap.String("path", args[0]))
			return nil
		},
	}
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
