package sigmap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sigmalab/internal/constants"
)

var ErrInvalidWindow = errors.New("sigmap: window radius and time must be positive")

// Lab wraps a constant set so every identity is evaluated consistently.
type Lab struct {
	K constants.Constants
}

func New(k constants.Constants) Lab {
	return Lab{K: k}
}

// Default uses CODATA constants.
var Default = New(constants.Default)

func validateWindow(radius, age float64) error {
	if !(radius > 0) {
		return fmt.Errorf("%w: radius %g m", ErrInvalidWindow, radius)
	}
	if !(age > 0) {
		return fmt.Errorf("%w: time %g s", ErrInvalidWindow, age)
	}
	return nil
}

func (l Lab) AlphaSigma(radius, age float64) (float64, error) {
	if err := validateWindow(radius, age); err != nil {
		return 0, err
	}
	return l.K.SigmaP() / (radius * age), nil
}

func (l Lab) NSigma(radius, age float64) (float64, error) {
	if err := validateWindow(radius, age); err != nil {
		return 0, err
	}
	return radius * age / l.K.SigmaP(), nil
}

func (l Lab) LambdaFromAlpha(radius, age float64) (float64, error) {
	alpha, err := l.AlphaSigma(radius, age)
	if err != nil {
		return 0, err
	}
	return alpha / l.K.PlanckLengthSquared(), nil
}

func (l Lab) LambdaFromWindow(radius, age float64) (float64, error) {
	if err := validateWindow(radius, age); err != nil {
		return 0, err
	}
	return 1 / (l.K.C * radius * age), nil
}

// CosmicWindowNow is the comoving radius of the observable universe
// (46.5 Gly) and its age (13.8 Gyr).
func (l Lab) CosmicWindowNow() (radius, age float64) {
	return 46.5e9 * l.K.LightYear, 13.8e9 * l.K.SecondsPerYear
}

type Snapshot struct {
	SigmaP            float64 `json:"sigma_p"`
	LP2               float64 `json:"lP2"`
	NSigma            float64 `json:"N_sigma"`
	AlphaSigma        float64 `json:"alpha_sigma"`
	LambdaFromAlpha   float64 `json:"lambda_from_alpha"`
	LambdaFromWindow  float64 `json:"lambda_from_window"`
	LambdaTimesNSigma float64 `json:"lambda_times_N_sigma"`
	InverseCSigmaP    float64 `json:"inverse_c_sigma_p"`
}

func (l Lab) Snapshot(radius, age float64) (Snapshot, error) {
	if err := validateWindow(radius, age); err != nil {
		return Snapshot{}, err
	}
	ns, _ := l.NSigma(radius, age)
	alpha, _ := l.AlphaSigma(radius, age)
	lamAlpha, _ := l.LambdaFromAlpha(radius, age)
	lamWindow, _ := l.LambdaFromWindow(radius, age)
	sp := l.K.SigmaP()

	return Snapshot{
		SigmaP:            sp,
		LP2:               l.K.PlanckLengthSquared(),
		NSigma:            ns,
		AlphaSigma:        alpha,
		LambdaFromAlpha:   lamAlpha,
		LambdaFromWindow:  lamWindow,
		LambdaTimesNSigma: lamAlpha * ns,
		InverseCSigmaP:    1 / (l.K.C * sp),
	}, nil
}

// Check names, in report order.
const (
	CheckSigmaPFromLP2   = "sigma_p_equals_lP2_over_c"
	CheckAlphaTimesN     = "alpha_times_nsigma_is_one"
	CheckLambdaMatch     = "lambda_definitions_match"
	CheckLambdaInvariant = "lambda_nsigma_invariant"
)

type Checks map[string]bool

// OK reports whether every check passed.
func (c Checks) OK() bool {
	for _, ok := range c {
		if !ok {
			return false
		}
	}
	return true
}

func (c Checks) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunChecks evaluates the four identities of a window with RelClose.
func (l Lab) RunChecks(radius, age, relTol, absTol float64) (Checks, error) {
	snap, err := l.Snapshot(radius, age)
	if err != nil {
		return nil, err
	}
	near := func(a, b float64) bool { return RelClose(a, b, relTol, absTol) }

	return Checks{
		CheckSigmaPFromLP2:   near(snap.SigmaP, snap.LP2/l.K.C),
		CheckAlphaTimesN:     near(snap.AlphaSigma*snap.NSigma, 1),
		CheckLambdaMatch:     near(snap.LambdaFromAlpha, snap.LambdaFromWindow),
		CheckLambdaInvariant: near(snap.LambdaTimesNSigma, snap.InverseCSigmaP),
	}, nil
}

// RelClose is |a-b| <= max(absTol, relTol*max(|a|,|b|)).
func RelClose(a, b, relTol, absTol float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= math.Max(absTol, relTol*scale)
}

// floor keeps clamped helpers finite for zero or negative inputs.
const floor = 1e-99

// WindowAlpha is sigma_P / (|R| |t|) with both factors floored at 1e-99.
func (l Lab) WindowAlpha(radius, age float64) float64 {
	return l.K.SigmaP() / (math.Max(math.Abs(radius), floor) * math.Max(math.Abs(age), floor))
}

// LambdaEff is 3 / (c |R| |t|), the de Sitter form of the window curvature.
func (l Lab) LambdaEff(radius, age float64) float64 {
	return 3 / (l.K.C * math.Max(math.Abs(radius), floor) * math.Max(math.Abs(age), floor))
}
