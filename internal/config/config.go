// Package config loads the lab's YAML configuration. Every section
// defaults to the values the models were calibrated with, so a file only
// needs the keys it changes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/cosmology"
	"github.com/san-kum/sigmalab/internal/evaporation"
	"github.com/san-kum/sigmalab/internal/orbits"
	"github.com/san-kum/sigmalab/internal/spinbrake"
)

const (
	DefaultDataDir  = ".sigmalab"
	DefaultLogLevel = "info"
	DefaultDt       = 0.01
	DefaultDuration = 10.0
)

type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	Constants   constants.Constants     `yaml:"constants"`
	Evaporation EvaporationConfig       `yaml:"evaporation"`
	Cycles      evaporation.CycleParams `yaml:"cycles"`
	SpinBrake   spinbrake.Params        `yaml:"spin_brake"`
	Kinematic   KinematicConfig         `yaml:"kinematic"`
	Cosmology   CosmologyConfig         `yaml:"cosmology"`
	Orbits      OrbitsConfig            `yaml:"orbits"`
	Run         RunConfig               `yaml:"run"`
}

type EvaporationConfig struct {
	evaporation.Params `yaml:",inline"`

	// SolarMasses is the initial mass M0 in solar masses.
	SolarMasses float64   `yaml:"solar_masses"`
	Alphas      []float64 `yaml:"alphas"`
}

type KinematicConfig struct {
	SolarMasses float64 `yaml:"solar_masses"`
	// Reservoir is the external mass in units of the core mass.
	Reservoir float64 `yaml:"reservoir"`
	Lambda    float64 `yaml:"lambda"`
	Duration  float64 `yaml:"duration"`
	Dt        float64 `yaml:"dt"`
	Drive     string  `yaml:"drive"`
	// Rate is the accretion rate in core masses per second.
	Rate   float64 `yaml:"rate"`
	Period float64 `yaml:"period"`

	// Spin is the motor slider in [0, 100].
	Spin      float64 `yaml:"spin"`
	BurdenMin float64 `yaml:"burden_min"`
	BurdenMax float64 `yaml:"burden_max"`
	Points    int     `yaml:"points"`
}

type CosmologyConfig struct {
	cosmology.Params `yaml:",inline"`

	T0      float64   `yaml:"t0"`
	T1      float64   `yaml:"t1"`
	Samples int       `yaml:"samples"`
	Initial []float64 `yaml:"initial"`
	TargetH float64   `yaml:"target_h"`
}

type OrbitsConfig struct {
	Particle   orbits.ParticleParams   `yaml:"particle"`
	Lens       orbits.LensParams       `yaml:"lens"`
	Precession orbits.PrecessionParams `yaml:"precession"`
}

// RunConfig drives the generic registry run: any registered system with
// any integrator and drive.
type RunConfig struct {
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	Drive      string             `yaml:"drive"`
	Dt         float64            `yaml:"dt"`
	Duration   float64            `yaml:"duration"`
	Adaptive   bool               `yaml:"adaptive"`
	Seed       int64              `yaml:"seed"`
	InitState  []float64          `yaml:"init_state,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	DriveRate  float64            `yaml:"drive_rate"`
	Period     float64            `yaml:"drive_period"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		LogLevel:  DefaultLogLevel,
		Constants: constants.Default,
		Evaporation: EvaporationConfig{
			Params:      evaporation.DefaultParams(),
			SolarMasses: 1,
			Alphas:      append([]float64(nil), evaporation.DefaultAlphas...),
		},
		Cycles:    evaporation.DefaultCycleParams(),
		SpinBrake: spinbrake.DefaultParams(),
		Kinematic: KinematicConfig{
			SolarMasses: 10,
			Reservoir:   1,
			Lambda:      0.1,
			Duration:    1,
			Dt:          1e-3,
			Drive:       "constant",
			Rate:        0.01,
			Period:      0.25,
			Spin:        80,
			BurdenMin:   0,
			BurdenMax:   1.5,
			Points:      50,
		},
		Cosmology: CosmologyConfig{
			Params:  cosmology.DefaultParams(),
			T0:      0,
			T1:      200,
			Samples: 2000,
			Initial: []float64(cosmology.DefaultInitial()),
			TargetH: 73,
		},
		Orbits: OrbitsConfig{
			Particle:   orbits.DefaultParticleParams(),
			Lens:       orbits.DefaultLensParams(),
			Precession: orbits.DefaultPrecessionParams(),
		},
		Run: RunConfig{
			Model:      "cosmology",
			Integrator: "rk4",
			Drive:      "none",
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no model can run with.
func (c *Config) Validate() error {
	if !c.Constants.Valid() {
		return fmt.Errorf("config: constants must all be positive")
	}
	if c.Evaporation.SolarMasses <= 0 {
		return fmt.Errorf("config: evaporation.solar_masses must be positive")
	}
	if c.Kinematic.SolarMasses <= 0 || c.Kinematic.Dt <= 0 {
		return fmt.Errorf("config: kinematic.solar_masses and kinematic.dt must be positive")
	}
	if c.Cosmology.T1 <= c.Cosmology.T0 || c.Cosmology.Samples < 2 {
		return fmt.Errorf("config: cosmology needs t1 > t0 and samples >= 2")
	}
	if len(c.Cosmology.Initial) != 3 {
		return fmt.Errorf("config: cosmology.initial needs 3 components, got %d", len(c.Cosmology.Initial))
	}
	if c.Run.Dt <= 0 || c.Run.Duration <= 0 {
		return fmt.Errorf("config: run.dt and run.duration must be positive")
	}
	return nil
}
