// Package cosmology implements the unified two-phase cosmology: a scale
// factor a, a dimensionless Hubble rate H and an entropy temperature T
// coupled through a tanh equation of state w(T) = tanh(alpha (T - T_c)).
//
//	da/dt = a H
//	dH/dt = -(1 + w) rho0 / (a^2 + eps) + f_P / (a^4 + eps) - mu H
//	dT/dt = -eta H T + gamma (T_c - T) + 0.05 e^{-a}
//
// Hot samples (T > T_c) belong to the expansion phase and cold samples to
// the deflation phase. Measurement operators average |H| over one phase,
// which is how the model reads the Hubble tension.
package cosmology
