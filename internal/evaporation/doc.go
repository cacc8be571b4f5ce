// Package evaporation integrates black-hole mass loss in three pictures:
//
//   - [Evaporator.Semiclassical]: the analytic continuum solution, which
//     evaporates to nothing and loses information linearly
//   - [Evaporator.Quantized]: sigma_P-smoothed mass loss with a Planck
//     temperature cap, a remnant floor, optional recycling and a
//     Page-like radiation entropy closure
//   - [Evaporator.FullQuantum]: the same dynamics on a longer window with
//     an interaction-quantum temperature cap and an exponential Page return
//
// Remnant cycles chain quantized runs and attach the two-qubit Page toy
// from package qinfo to each cycle.
//
// The smoothed law is dM/dt = -gamma K0 / (M^2 + alpha M_P^2) with
// K0 = hbar c^4 / (15360 pi G^2). It is stepped with forward Euler on a
// uniform grid through [dynamo.Simulator].
package evaporation
