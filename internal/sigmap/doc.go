// Package sigmap implements the sigma_P consistency identities and the tick
// bookkeeping that counts actions in units of hbar and sigma_P.
//
// A cosmological window W = (R, t) is a radius in metres and an age in
// seconds. The window fixes
//
//	N_sigma = R t / sigma_P
//	alpha_sigma = sigma_P / (R t) = 1 / N_sigma
//	Lambda = alpha_sigma / l_P^2 = 1 / (c R t)
//
// The validated functions reject non-positive windows with
// [ErrInvalidWindow]; [WindowAlpha] and [LambdaEff] clamp instead and never
// fail.
package sigmap
