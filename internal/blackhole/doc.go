// Package blackhole collects the closed-form Schwarzschild and Kerr
// formulas the evaporation models are built on: horizon radius, curvature,
// Hawking temperature, Bekenstein-Hawking entropy, the semiclassical
// lifetime and the c0 non-thermality coefficient of a smeared kernel.
//
// The Schwarzschild helpers take |M| and floor it at 1e-99 kg so they stay
// finite on any input. Callers that need to reject bad masses use
// [Calc.Validate].
package blackhole
