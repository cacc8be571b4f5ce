package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/sigmap"
)

var (
	windowRadius float64
	windowAge    float64
	relTol       float64
	absTol       float64

	massKg    float64
	kerrMass  float64
	kerrChi   float64
	kernelTau float64
	kernelLen float64
)

func constantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constants",
		Short: "print the SI inputs and the sigma_P derived scales",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("run")
			if err != nil {
				return err
			}
			k := cfg.Constants
			lab := sigmap.New(k)

			title("inputs")
			w := newTab()
			fmt.Fprintf(w, "hbar\t%.9e\tJ s\n", k.Hbar)
			fmt.Fprintf(w, "G\t%.6e\tm^3 kg^-1 s^-2\n", k.G)
			fmt.Fprintf(w, "c\t%.9e\tm/s\n", k.C)
			fmt.Fprintf(w, "k_B\t%.6e\tJ/K\n", k.KB)
			fmt.Fprintf(w, "M_sun\t%.4e\tkg\n", k.SolarMass)
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Println()
			title("derived")
			w = newTab()
			fmt.Fprintf(w, "sigma_P\t%.6e\tm s\n", k.SigmaP())
			fmt.Fprintf(w, "l_P\t%.6e\tm\n", k.PlanckLength())
			fmt.Fprintf(w, "t_P\t%.6e\ts\n", k.PlanckTime())
			fmt.Fprintf(w, "M_P\t%.6e\tkg\n", k.PlanckMass())
			fmt.Fprintf(w, "E_P\t%.6e\tJ\n", k.PlanckEnergy())
			fmt.Fprintf(w, "omega_P\t%.6e\t1/s\n", k.PlanckFrequency())
			fmt.Fprintf(w, "F_P\t%.6e\tN\n", k.PlanckForce())
			fmt.Fprintf(w, "T_cap\t%.6e\tK\n", k.PlanckTemperatureCap())
			fmt.Fprintf(w, "Z\t%.6e\t\n", k.InteractionQuantum())
			fmt.Fprintf(w, "A_G\t%.6e\t\n", k.GeometricCoupling())
			fmt.Fprintf(w, "Z A_G / sigma_P\t%.6e\t\n", lab.RelationRatio())
			fmt.Fprintf(w, "hawking action / hbar\t%.12f\t\n", lab.HawkingAction(k.SolarMass)/k.Hbar)
			return w.Flush()
		},
	}
}

func consistencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "check the sigma_P identities on a cosmic window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("run")
			if err != nil {
				return err
			}
			lab := sigmap.New(cfg.Constants)
			r, t := lab.CosmicWindowNow()
			override(cmd, "radius", &r, windowRadius)
			override(cmd, "age", &t, windowAge)

			snap, err := lab.Snapshot(r, t)
			if err != nil {
				return err
			}
			checks, err := lab.RunChecks(r, t, relTol, absTol)
			if err != nil {
				return err
			}

			title(fmt.Sprintf("window R = %.4e m, t = %.4e s", r, t))
			w := newTab()
			fmt.Fprintf(w, "sigma_P\t%.6e\n", snap.SigmaP)
			fmt.Fprintf(w, "l_P^2\t%.6e\n", snap.LP2)
			fmt.Fprintf(w, "N_sigma\t%.6e\n", snap.NSigma)
			fmt.Fprintf(w, "alpha_sigma\t%.6e\n", snap.AlphaSigma)
			fmt.Fprintf(w, "lambda (alpha)\t%.6e\n", snap.LambdaFromAlpha)
			fmt.Fprintf(w, "lambda (window)\t%.6e\n", snap.LambdaFromWindow)
			fmt.Fprintf(w, "lambda N_sigma\t%.6e\n", snap.LambdaTimesNSigma)
			fmt.Fprintf(w, "1 / (c sigma_P)\t%.6e\n", snap.InverseCSigmaP)
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Println()
			w = newTab()
			for _, name := range checks.Names() {
				fmt.Fprintf(w, "%s\t%s\n", name, verdict(checks[name]))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !checks.OK() {
				return fmt.Errorf("consistency checks failed")
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&windowRadius, "radius", 0, "window radius in m (default: observable universe)")
	cmd.Flags().Float64Var(&windowAge, "age", 0, "window age in s (default: age of the universe)")
	cmd.Flags().Float64Var(&relTol, "rtol", 1e-12, "relative tolerance")
	cmd.Flags().Float64Var(&absTol, "atol", 0, "absolute tolerance")
	return cmd
}

func blackholesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blackholes",
		Short: "horizon, Hawking and tick diagnostics of reference holes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("run")
			if err != nil {
				return err
			}
			bh := blackhole.New(cfg.Constants)
			lab := sigmap.New(cfg.Constants)

			samples := bh.Samples()
			if cmd.Flags().Changed("mass") {
				if err := bh.Validate(massKg); err != nil {
					return err
				}
				samples = []blackhole.Sample{{Class: "custom", Mass: massKg}}
			}

			w := newTab()
			fmt.Fprintln(w, "CLASS\tMASS [kg]\tR_S [m]\tT_H [K]\tS [J/K]\tLIFETIME [yr]\tR_PL/R_S\tTICKS\tBITS")
			for _, s := range samples {
				d := bh.Diagnose(s.Mass)
				fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.3e\t%.3e\t%.3e\t%.3e\t%.3e\t%.3e\n",
					s.Class,
					s.Mass,
					d.Rs,
					bh.HawkingTemperature(s.Mass),
					bh.Entropy(s.Mass),
					bh.Lifetime(s.Mass)/cfg.Constants.Year(),
					d.Ratio,
					lab.BHTickCount(s.Mass),
					lab.EntropyBits(s.Mass),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&massKg, "mass", 0, "single hole mass in kg")
	return cmd
}

func kerrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kerr",
		Short: "rotating hole horizons and the kernel non-thermality c0",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig("run")
			if err != nil {
				return err
			}
			bh := blackhole.New(cfg.Constants)
			kerr, err := bh.NewKerr(kerrMass*cfg.Constants.SolarMass, kerrChi)
			if err != nil {
				return err
			}

			title(fmt.Sprintf("kerr M = %g M_sun, chi = %g", kerrMass, kerrChi))
			w := newTab()
			fmt.Fprintf(w, "r+\t%.6e\tm\n", kerr.RPlus)
			fmt.Fprintf(w, "r-\t%.6e\tm\n", kerr.RMinus)
			fmt.Fprintf(w, "kappa\t%.6e\tm/s^2\n", kerr.KappaSI)
			fmt.Fprintf(w, "T_H\t%.6e\tK\n", kerr.TH)

			length := kernelLen
			if length == 0 {
				length = cfg.Constants.PlanckLength()
			}
			tau := kernelTau
			if tau == 0 {
				tau = cfg.Constants.PlanckTime()
			}
			epsT, epsS := kerr.EpsilonTerms(tau, length)
			fmt.Fprintf(w, "eps_t\t%.6e\t\n", epsT)
			fmt.Fprintf(w, "eps_s\t%.6e\t\n", epsS)
			fmt.Fprintf(w, "c0\t%.6e\t\n", kerr.C0(tau, length, blackhole.DefaultModes))
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&kerrMass, "solar-masses", 10, "mass in solar masses")
	cmd.Flags().Float64Var(&kerrChi, "chi", 0.7, "dimensionless spin a/M")
	cmd.Flags().Float64Var(&kernelTau, "tau", 0, "kernel time width in s (default: Planck time)")
	cmd.Flags().Float64Var(&kernelLen, "length", 0, "kernel length in m (default: Planck length)")
	return cmd
}
