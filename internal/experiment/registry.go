package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/control"
	"github.com/san-kum/sigmalab/internal/cosmology"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/evaporation"
	"github.com/san-kum/sigmalab/internal/integrators"
	"github.com/san-kum/sigmalab/internal/kinematic"
	"github.com/san-kum/sigmalab/internal/metrics"
	"github.com/san-kum/sigmalab/internal/orbits"
)

// Model is a registered system with its default start and the metrics
// worth watching on it.
type Model struct {
	Description string
	Build       func(k constants.Constants) (dynamo.System, dynamo.State, error)
	Metrics     func() []dynamo.Metric
}

// DriveParams feeds every drive; each reads the fields it needs.
type DriveParams struct {
	Rate   float64
	Period float64

	Kp, Ki, Kd float64
	Target     float64
	Index      int
}

type Registry struct {
	k      constants.Constants
	models map[string]Model
	drives map[string]func(dim int, p DriveParams) dynamo.Controller
}

func NewRegistry(k constants.Constants) *Registry {
	r := &Registry{
		k:      k,
		models: make(map[string]Model),
		drives: make(map[string]func(int, DriveParams) dynamo.Controller),
	}

	r.models["evaporation"] = Model{
		Description: "sigma_P-smoothed Hawking mass loss of a 2e5 kg hole",
		Build: func(k constants.Constants) (dynamo.System, dynamo.State, error) {
			sys := evaporation.NewSmoothedHawking(blackhole.New(k), evaporation.DefaultAlpha, evaporation.DefaultGamma, k.PlanckMass())
			return sys, dynamo.State{2e5}, nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewNonNegative("mass", 0),
				metrics.NewComponentDrift("mass_lost", 0),
			}
		},
	}
	r.models["kinematic"] = Model{
		Description: "accreting core spun up by infall and braked by its own mass",
		Build: func(k constants.Constants) (dynamo.System, dynamo.State, error) {
			m0 := 10 * k.SolarMass
			e, err := kinematic.NewEngine(k, m0, m0, nil)
			if err != nil {
				return nil, nil, err
			}
			return e, e.State(), nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewNonNegative("omega", 2),
				metrics.NewPeak("omega", 2),
				metrics.NewControlEffort(),
			}
		},
	}
	r.models["cosmology"] = Model{
		Description: "two-phase (a, H, T) universe",
		Build: func(constants.Constants) (dynamo.System, dynamo.State, error) {
			return cosmology.NewModel(cosmology.DefaultParams()), cosmology.DefaultInitial(), nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{
				metrics.NewNonNegative("a", 0),
				metrics.NewPeak("H", 1),
				metrics.NewPeak("T", 2),
				metrics.NewBounded(1e6),
			}
		},
	}
	r.models["particle"] = Model{
		Description: "test particle released at 3 r_s around 10 solar masses",
		Build: func(k constants.Constants) (dynamo.System, dynamo.State, error) {
			p := orbits.NewParticleOrbit(k, 10*k.SolarMass)
			return p, p.Start(3, 0.3), nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{angularMomentumDrift()}
		},
	}
	r.models["precession"] = Model{
		Description: "post-Newtonian orbit at 100 r_s, e = 0.3",
		Build: func(k constants.Constants) (dynamo.System, dynamo.State, error) {
			const mass, a, e = 2e30, 100.0, 0.3
			rs := blackhole.New(k).SchwarzschildRadius(mass)
			r0 := a * rs * (1 + e)
			return orbits.NewPrecessing(k, mass), dynamo.State{r0, 0, 0, math.Sqrt(k.G * mass * (1 - e) / r0)}, nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{angularMomentumDrift(), metrics.NewPeak("r", 0)}
		},
	}
	r.models["photon"] = Model{
		Description: "light ray passing a solar mass at b = 2.5 r_s",
		Build: func(k constants.Constants) (dynamo.System, dynamo.State, error) {
			p := orbits.NewPhotonPath(k, k.SolarMass)
			rs := p.SchwarzschildRadius()
			return p, dynamo.State{-20 * rs, 2.5 * rs, k.C, 0}, nil
		},
		Metrics: func() []dynamo.Metric {
			return []dynamo.Metric{metrics.NewDrift("speed_drift", func(x dynamo.State) float64 {
				return math.Hypot(x[2], x[3])
			})}
		},
	}

	r.drives["none"] = func(dim int, _ DriveParams) dynamo.Controller { return control.NewNone(dim) }
	r.drives["constant"] = func(_ int, p DriveParams) dynamo.Controller { return control.NewConstant(p.Rate) }
	r.drives["sinusoidal"] = func(_ int, p DriveParams) dynamo.Controller {
		return control.NewSinusoidal(p.Rate, p.Period)
	}
	r.drives["regulator"] = func(_ int, p DriveParams) dynamo.Controller {
		return control.NewRegulator(p.Kp, p.Ki, p.Kd, p.Target, p.Index)
	}

	return r
}

func angularMomentumDrift() dynamo.Metric {
	return metrics.NewDrift("l_drift", func(x dynamo.State) float64 { return x[0] * x[3] })
}

func (r *Registry) GetModel(name string) (dynamo.System, dynamo.State, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown model: %s", name)
	}
	return m.Build(r.k)
}

func (r *Registry) Describe(name string) string { return r.models[name].Description }

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.ByName(name)
}

// GetDrive builds a controller feeding dim control channels.
func (r *Registry) GetDrive(name string, dim int, p DriveParams) (dynamo.Controller, error) {
	fn, ok := r.drives[name]
	if !ok {
		return nil, fmt.Errorf("unknown drive: %s", name)
	}
	return fn(dim, p), nil
}

func (r *Registry) ListModels() []string { return sortedKeys(r.models) }

func (r *Registry) ListDrives() []string { return sortedKeys(r.drives) }

func (r *Registry) DefaultMetrics(model string) []dynamo.Metric {
	m, ok := r.models[model]
	if !ok || m.Metrics == nil {
		return nil
	}
	return m.Metrics()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
