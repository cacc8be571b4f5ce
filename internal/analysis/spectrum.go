package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short for a spectrum")

type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum returns |X_k|^2 / n for k in [0, n/2] of the mean-removed
// series sampled every dt.
func PowerSpectrum(data []float64, dt float64) (Spectrum, error) {
	n := len(data)
	if n < 4 || dt <= 0 {
		return Spectrum{}, ErrShortSeries
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	s := Spectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for k := 0; k < half; k++ {
		a := cmplx.Abs(coeffs[k])
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		s.Power[k] = a * a / float64(n)
	}
	return s, nil
}

// DominantFrequency is the frequency of the strongest non-zero bin.
func DominantFrequency(s Spectrum) float64 {
	best := 0
	for k := 1; k < len(s.Power); k++ {
		if best == 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best == 0 {
		return 0
	}
	return s.Freqs[best]
}
