// Package dynamo provides the integration core shared by every model in
// sigmalab.
//
// The package defines the interfaces and types for explicit numerical
// integration of ordinary differential equations:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator] and [AdaptiveIntegrator]: one-step methods
//   - [Projector]: post-step clamp onto the admissible set
//   - [Simulator]: orchestrates fixed, adaptive and dense-output runs
//
// # Example
//
//	sys := evaporation.NewSmoothedHawking(c, 4, 1)
//	sim := dynamo.New(sys, integrators.NewEuler(), nil)
//	result, _ := sim.Run(ctx, dynamo.State{m0}, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel runs use
// [Ensemble] or [ParallelFor] with one simulator per goroutine.
package dynamo
