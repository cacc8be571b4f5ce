// Package kinematic models a black hole as a kinematic transformer: an
// hbar-spin core (the stator) loaded by accreted mass (the rotor).
//
// [Engine] is the time-stepped re-energise/brake cycle. [MotorSweep] and
// [SpinMassInterplay] are closed-form sweeps over the mass burden.
package kinematic
