// Package analysis holds the post-processing shared by the lab models.
//
//   - [PowerSpectrum], [DominantFrequency]: one-sided spectra of uniformly
//     sampled series
//   - [Gradient]: second-order finite differences on a non-uniform grid
//   - [LyapunovExponent]: largest exponent by two-trajectory renormalisation
//   - [Portrait], [Section]: phase-space projections and threshold crossings
//   - [Bifurcation]: parameter sweeps that record the distinct late values
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(dyn, integ, x0, dt, duration, 1e-8)
package analysis
