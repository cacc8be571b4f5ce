package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/sigmalab/internal/config"
	"github.com/san-kum/sigmalab/internal/logging"
	"github.com/san-kum/sigmalab/internal/storage"
)

var (
	dataDir    string
	logLevel   string
	devLog     bool
	configFile string
	preset     string
	saveRun    bool

	logger = zap.NewNop()
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// main loads .env, registers every command and runs the root command. It
// exits with status 1 when a command fails.
func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "sigmalab",
		Short:         "sigma_P physics lab: black holes, evaporation, cosmology, orbits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				cfg, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if !cmd.Flags().Changed("data") && cfg.DataDir != "" {
					dataDir = cfg.DataDir
				}
				if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
					logLevel = cfg.LogLevel
				}
			}
			l, err := logging.New(logLevel, devLog)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", envOr("SIGMALAB_DATA", config.DefaultDataDir), "data directory")
	pf.StringVar(&logLevel, "log-level", envOr("SIGMALAB_LOG_LEVEL", config.DefaultLogLevel), "log level")
	pf.BoolVar(&devLog, "dev", false, "human readable console logs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVar(&saveRun, "save", false, "store the run under the data directory")

	rootCmd.AddCommand(
		constantsCmd(), consistencyCmd(), blackholesCmd(), kerrCmd(),
		evaporateCmd(), cyclesCmd(), spinbrakeCmd(), bitsCmd(),
		kinematicCmd(), motorCmd(), cosmologyCmd(), orbitCmd(),
		spectrumCmd(), resonanceCmd(),
		scenarioCmd(), sweepCmd(), monteCarloCmd(),
		runCmd(), listCmd(), plotCmd(), exportCmd(), presetsCmd(), initConfigCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, failStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// resolveConfig starts from the defaults, then the named preset of
// section, then the config file. Flags are applied by each command.
func resolveConfig(section string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(section, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(section))
		}
		c := *p
		cfg = &c
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

// override copies v into dst when the flag was set on the command line.
func override[T any](cmd *cobra.Command, flag string, dst *T, v T) {
	if cmd.Flags().Changed(flag) {
		*dst = v
	}
}

func title(s string) {
	fmt.Println(titleStyle.Render(s))
}

func newTab() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func verdict(ok bool) string {
	if ok {
		return passStyle.Render("PASS")
	}
	return failStyle.Render("FAIL")
}

// plot draws the finite values of data; an empty series prints nothing.
func plot(caption string, data []float64) {
	vals := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return
	}
	fmt.Println(asciigraph.Plot(vals,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Println()
}

// save stores the run when --save was given.
func save(meta storage.RunMetadata, table storage.Table) error {
	if !saveRun {
		return nil
	}
	return store(meta, table)
}

func store(meta storage.RunMetadata, table storage.Table) error {
	meta.Params = finite(meta.Params)
	meta.Metrics = finite(meta.Metrics)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(meta, table)
	if err != nil {
		return err
	}
	logger.Info("run saved", zap.String("id", id), zap.String("dir", st.Dir()))
	fmt.Printf("run id: %s\n", id)
	return nil
}
