package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/sigmalab/internal/resonance"
	"github.com/san-kum/sigmalab/internal/spectrum"
)

var (
	specQ      float64
	specPoints int

	resSeed       int64
	resIterations int
	resSize       int
	resBins       int
)

func spectrumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrum",
		Short: "log-staircase mass spectrum and its q fit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("run")
			if err != nil {
				return err
			}
			st := spectrum.New(cfg.Constants)

			fit, err := st.FitQ(cmd.Context(), spectrum.Particles, spectrum.DefaultQMin, spectrum.DefaultQMax, specPoints)
			if err != nil {
				return err
			}

			for _, q := range []float64{specQ, fit.Q} {
				rows, mean := st.Table(spectrum.Particles, q)
				title(fmt.Sprintf("q = %.6f", q))
				w := newTab()
				fmt.Fprintln(w, "PARTICLE\tOBSERVED [kg]\tN\tN_Q\tPREDICTED [kg]\tERROR %")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%.4e\t%.3f\t%.1f\t%.4e\t%.2f\n",
						r.Name, r.Observed, r.NRaw, r.NQuantized, r.Predicted, r.ErrorPct)
				}
				fmt.Fprintf(w, "mean\t\t\t\t\t%.3f\n", mean)
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Println()
			}
			fmt.Printf("best q = %.6f, rms log error = %.6f\n", fit.Q, fit.Loss)
			return nil
		},
	}
	cmd.Flags().Float64Var(&specQ, "q", spectrum.QRef, "reference staircase ratio")
	cmd.Flags().IntVar(&specPoints, "points", spectrum.DefaultPoints, "q grid points of the fit")
	return cmd
}

func resonanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resonance",
		Short: "critical-line walk and GUE level spacings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resBins < 1 {
				return fmt.Errorf("--bins must be at least 1, got %d", resBins)
			}
			rng := rand.New(rand.NewSource(resSeed))

			walk := resonance.ScalingWalk(rng, resIterations)
			title("scaling walk")
			plot("Re(s)", walk)
			if n := len(walk); n > 0 {
				fmt.Printf("final Re(s) = %.6f\n\n", walk[n-1])
			}

			spacings, err := resonance.GUESpacings(rng, resSize)
			if err != nil {
				return err
			}
			const maxSpacing = 3.0
			h, err := resonance.SpacingHistogram(spacings, resBins, maxSpacing)
			if err != nil {
				return err
			}

			title(fmt.Sprintf("GUE spacings (%d levels)", resSize))
			w := newTab()
			fmt.Fprintln(w, "S\tDENSITY\tWIGNER")
			for i, d := range h.Density {
				mid := (h.Edges[i] + h.Edges[i+1]) / 2
				fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\n", mid, d, resonance.WignerSurmise(mid))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&resSeed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&resIterations, "iterations", 1000, "walk steps")
	cmd.Flags().IntVar(&resSize, "size", 400, "GUE matrix size")
	cmd.Flags().IntVar(&resBins, "bins", 15, "histogram bins")
	return cmd
}
