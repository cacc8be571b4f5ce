package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/sigmalab/internal/automation"
	"github.com/san-kum/sigmalab/internal/experiment"
	"github.com/san-kum/sigmalab/internal/storage"
)

var (
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	sweepMetric string

	mcTrials int
	mcBound  float64
	mcSpread float64
	mcSeed   int64

	batchDt         float64
	batchDuration   float64
	batchIntegrator string
	batchWorkers    int
)

func newBatchRunner(withStore bool) (*automation.Runner, error) {
	cfg, err := resolveConfig("run")
	if err != nil {
		return nil, err
	}
	var saver automation.Saver
	if withStore {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		saver = st
	}
	return automation.NewRunner(experiment.NewRegistry(cfg.Constants), saver, logger), nil
}

func scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			r, err := newBatchRunner(true)
			if err != nil {
				return err
			}
			if sc.Name != "" {
				title(sc.Name)
			}
			if sc.Description != "" {
				fmt.Println(dimStyle.Render(sc.Description))
			}

			out, err := r.RunScenario(cmd.Context(), sc)
			w := newTab()
			fmt.Fprintln(w, "STEP\tMODEL\tSTEPS\tFINAL\tRUN")
			for _, o := range out {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", o.Step, o.Model, o.Result.StepsTaken, formatState(o.Result.Final()), o.RunID)
			}
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}
			return err
		},
	}
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "vary one model parameter over a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newBatchRunner(false)
			if err != nil {
				return err
			}
			pts, err := r.RunSweep(cmd.Context(), automation.Sweep{
				Model:      args[0],
				Integrator: batchIntegrator,
				Param:      sweepParam,
				Min:        sweepMin,
				Max:        sweepMax,
				Points:     sweepPoints,
				Dt:         batchDt,
				Duration:   batchDuration,
				Workers:    batchWorkers,
			})
			if err != nil {
				return err
			}

			title(fmt.Sprintf("%s sweep of %s", args[0], sweepParam))
			w := newTab()
			fmt.Fprintf(w, "%s\tFINAL\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(sweepMetric))
			series := make([]float64, 0, len(pts))
			for _, p := range pts {
				m := p.Metrics[sweepMetric]
				series = append(series, m)
				fmt.Fprintf(w, "%.6g\t%s\t%.6g\n", p.Value, formatState(p.Final), m)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			plot(sweepMetric, series)
			return nil
		},
	}
	addBatchFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "alpha", "parameter to vary")
	cmd.Flags().Float64Var(&sweepMin, "min", 3, "first grid value")
	cmd.Flags().Float64Var(&sweepMax, "max", 4, "last grid value")
	cmd.Flags().IntVar(&sweepPoints, "points", 11, "grid points")
	cmd.Flags().StringVar(&sweepMetric, "metric", "H_peak", "metric to tabulate and plot")
	return cmd
}

func monteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "perturbed-start trials and their stability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newBatchRunner(false)
			if err != nil {
				return err
			}
			trials, stats, err := r.RunMonteCarlo(cmd.Context(), automation.MonteCarlo{
				Model:      args[0],
				Integrator: batchIntegrator,
				Trials:     mcTrials,
				Spread:     mcSpread,
				Bound:      mcBound,
				Dt:         batchDt,
				Duration:   batchDuration,
				Seed:       mcSeed,
				Workers:    batchWorkers,
			})
			if err != nil {
				return err
			}

			title(fmt.Sprintf("%s: %d trials, spread %g", args[0], stats.Trials, mcSpread))
			w := newTab()
			fmt.Fprintln(w, "TRIAL\tINIT\tFINAL\tSTABLE")
			for _, t := range trials {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, formatState(t.Init), formatState(t.Final), verdict(t.Stable))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nstable: %d/%d (%.1f%%)\n", stats.Stable, stats.Trials, 100*stats.Fraction)
			if stats.Stable > 0 {
				fmt.Printf("mean final: %s\nstd final:  %s\n", formatState(stats.MeanFinal), formatState(stats.StdFinal))
			}
			return nil
		},
	}
	addBatchFlags(cmd)
	cmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&mcSpread, "spread", 0.01, "relative perturbation of the start")
	cmd.Flags().Float64Var(&mcBound, "bound", 0, "largest stable |component| (0: finite only)")
	cmd.Flags().Int64Var(&mcSeed, "seed", 1, "random seed")
	return cmd
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&batchDt, "dt", 0, "timestep (0: default)")
	cmd.Flags().Float64Var(&batchDuration, "time", 0, "duration (0: default)")
	cmd.Flags().StringVar(&batchIntegrator, "integrator", "rk4", "integrator")
	cmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel workers (0: one per CPU)")
}

func formatState(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
