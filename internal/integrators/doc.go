// Package integrators implements the one-step methods used by the lab
// models.
//
//   - [Euler]: explicit first order, used by the evaporation loops
//   - [RK4]: classic fourth order with reusable scratch buffers
//   - [RK45]: Dormand-Prince 5(4) with embedded error control
//   - [Verlet], [Leapfrog]: symplectic splitters for position/velocity states
//   - [Limiter]: relative-change guard for stiff toy models
//
// Symplectic methods assume the state is laid out as all positions
// followed by all velocities.
package integrators
