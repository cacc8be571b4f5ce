// Package qinfo is a small toolkit for bipartite density matrices: partial
// trace, von Neumann entropy and the two-qubit Page-curve toy that tracks
// entanglement through one evaporation cycle.
package qinfo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrShape = errors.New("qinfo: density matrix has the wrong shape")
	ErrKeep  = errors.New("qinfo: keep must be 0 or 1")
)

// DefaultEps drops eigenvalues that are numerically zero.
const DefaultEps = 1e-15

// PartialTrace traces out one factor of a (dA*dB)-dimensional bipartite
// density matrix and returns the reduced matrix of subsystem keep.
func PartialTrace(rho *mat.CDense, keep, dA, dB int) (*mat.CDense, error) {
	n := dA * dB
	if r, c := rho.Dims(); r != n || c != n {
		return nil, fmt.Errorf("%w: want %dx%d, got %dx%d", ErrShape, n, n, r, c)
	}

	switch keep {
	case 0:
		out := mat.NewCDense(dA, dA, nil)
		for a := 0; a < dA; a++ {
			for ap := 0; ap < dA; ap++ {
				var sum complex128
				for b := 0; b < dB; b++ {
					sum += rho.At(a*dB+b, ap*dB+b)
				}
				out.Set(a, ap, sum)
			}
		}
		return out, nil
	case 1:
		out := mat.NewCDense(dB, dB, nil)
		for b := 0; b < dB; b++ {
			for bp := 0; bp < dB; bp++ {
				var sum complex128
				for a := 0; a < dA; a++ {
					sum += rho.At(a*dB+b, a*dB+bp)
				}
				out.Set(b, bp, sum)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrKeep, keep)
	}
}

// HermitianEigenvalues returns the ascending eigenvalues of the Hermitian
// part of h. The n x n complex problem H = A + iB is solved as the real
// symmetric 2n x 2n problem [[A, -B], [B, A]], whose spectrum is that of H
// with every eigenvalue doubled.
func HermitianEigenvalues(h *mat.CDense) ([]float64, error) {
	n, c := h.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: not square (%dx%d)", ErrShape, n, c)
	}

	emb := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			z := 0.5 * (h.At(i, j) + conj(h.At(j, i)))
			re, im := real(z), imag(z)
			emb.SetSym(i, j, re)
			emb.SetSym(n+i, n+j, re)
			emb.SetSym(i, n+j, -im)
			emb.SetSym(j, n+i, im)
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(emb, false); !ok {
		return nil, errors.New("qinfo: eigendecomposition did not converge")
	}
	all := es.Values(nil)
	sort.Float64s(all)

	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 0.5 * (all[2*i] + all[2*i+1])
	}
	return vals, nil
}

// VonNeumannEntropy is -Tr(rho log2 rho). Eigenvalues are clipped to [0, 1]
// and those at or below eps are dropped.
func VonNeumannEntropy(rho *mat.CDense, eps float64) (float64, error) {
	vals, err := HermitianEigenvalues(rho)
	if err != nil {
		return 0, err
	}

	s := 0.0
	for _, p := range vals {
		p = math.Max(0, math.Min(1, p))
		if p > eps {
			s -= p * math.Log2(p)
		}
	}
	return s, nil
}

// PureState returns |psi><psi|.
func PureState(psi []complex128) *mat.CDense {
	n := len(psi)
	rho := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rho.Set(i, j, psi[i]*conj(psi[j]))
		}
	}
	return rho
}

// BellFamily is cos(theta)|00> + sin(theta)|11>.
func BellFamily(theta float64) []complex128 {
	return []complex128{complex(math.Cos(theta), 0), 0, 0, complex(math.Sin(theta), 0)}
}

// PageCurve is the entanglement record of one toy evaporation cycle.
type PageCurve struct {
	Steps   []int     `json:"steps"`
	Entropy []float64 `json:"entropy"`
}

// QubitPageCurve sweeps theta from 0 up to pi/4 and back over n samples
// (n is raised to 2) and records the entropy of the radiated qubit. The
// curve rises to one bit mid-cycle and returns to zero.
func QubitPageCurve(n int) PageCurve {
	if n < 2 {
		n = 2
	}
	x := floats.Span(make([]float64, n), 0, 1)

	pc := PageCurve{Steps: make([]int, n), Entropy: make([]float64, n)}
	for i, xi := range x {
		theta := 0.5 * math.Pi * xi
		if xi > 0.5 {
			theta = 0.5 * math.Pi * (1 - xi)
		}

		rho := PureState(BellFamily(theta))
		rad, err := PartialTrace(rho, 1, 2, 2)
		if err != nil {
			panic(err)
		}
		s, err := VonNeumannEntropy(rad, DefaultEps)
		if err != nil {
			panic(err)
		}

		pc.Steps[i] = i
		pc.Entropy[i] = s
	}
	return pc
}

// DecideBit is 1 when any amplitude exceeds threshold.
func DecideBit(probs []float64, threshold float64) int {
	if len(probs) > 0 && floats.Max(probs) > threshold {
		return 1
	}
	return 0
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
