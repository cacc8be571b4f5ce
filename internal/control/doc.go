// Package control provides accretion drives for the kinematic engine.
//
// A drive implements [dynamo.Controller] and returns a one-component
// control: the accretion rate in kg/s at time t.
//
//   - [None]: no accretion
//   - [Constant]: fixed rate
//   - [Sinusoidal]: base (1 + sin(t/period)), the cyclic feeding used in
//     the engine demo
//   - [Regulator]: PID feedback holding one state component at a target
//
// Drives implementing [dynamo.Configurable] can be tuned from config files.
package control
