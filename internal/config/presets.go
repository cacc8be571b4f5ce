package config

import "sort"

// derive builds a full configuration from the defaults.
func derive(mod func(c *Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"evaporation": {
		"solar": derive(func(c *Config) {}),
		"recycle": derive(func(c *Config) {
			c.Evaporation.Recycle = true
			c.Evaporation.RecycleDuration = 0.25
		}),
		"sharp": derive(func(c *Config) {
			c.Evaporation.Alpha = 1
			c.Evaporation.Steps = 4000
		}),
		"primordial": derive(func(c *Config) {
			c.Evaporation.SolarMasses = 1e-19
		}),
	},
	"cycles": {
		"short": derive(func(c *Config) { c.Cycles.Cycles = 2 }),
		"long": derive(func(c *Config) {
			c.Cycles.Cycles = 6
			c.Cycles.QMSteps = 256
		}),
	},
	"spinbrake": {
		"rk4": derive(func(c *Config) {}),
		"euler": derive(func(c *Config) {
			c.SpinBrake.Integrator = "euler"
		}),
		"fine": derive(func(c *Config) {
			c.SpinBrake.Steps = 2000
			c.SpinBrake.MaxRelChange = 0.01
		}),
	},
	"kinematic": {
		"steady": derive(func(c *Config) {}),
		"pulsed": derive(func(c *Config) {
			c.Kinematic.Drive = "sinusoidal"
			c.Kinematic.Period = 0.1
		}),
		"starved": derive(func(c *Config) {
			c.Kinematic.Drive = "none"
		}),
	},
	"cosmology": {
		"utc": derive(func(c *Config) {}),
		"sharp": derive(func(c *Config) {
			c.Cosmology.Alpha = 8
		}),
		"damped": derive(func(c *Config) {
			c.Cosmology.Mu = 0.5
			c.Cosmology.T1 = 100
		}),
	},
	"orbits": {
		"infall": derive(func(c *Config) {}),
		"grazing": derive(func(c *Config) {
			c.Orbits.Lens.ImpactRs = 10
			c.Orbits.Lens.Steps = 20000
		}),
		"mercury": derive(func(c *Config) {
			c.Orbits.Precession.SemiMajorRs = 1000
			c.Orbits.Precession.Eccentricity = 0.2
		}),
	},
	"run": {
		"cosmology": derive(func(c *Config) {
			c.Run.Model = "cosmology"
			c.Run.Integrator = "rk45"
			c.Run.Adaptive = true
			c.Run.Duration = 100
			c.Run.Dt = 0.01
		}),
		"evaporation": derive(func(c *Config) {
			c.Run.Model = "evaporation"
			c.Run.Integrator = "rk4"
			c.Run.Duration = 1
			c.Run.Dt = 1e-3
		}),
		"kinematic": derive(func(c *Config) {
			c.Run.Model = "kinematic"
			c.Run.Integrator = "euler"
			c.Run.Drive = "constant"
			c.Run.DriveRate = 1e29
			c.Run.Duration = 1
			c.Run.Dt = 1e-3
		}),
		"photon": derive(func(c *Config) {
			c.Run.Model = "photon"
			c.Run.Integrator = "verlet"
			c.Run.Duration = 1e-3
			c.Run.Dt = 2e-7
		}),
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names for model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the sections that carry presets, sorted.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
