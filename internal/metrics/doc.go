// Package metrics holds dynamo.Metric implementations that watch a run
// step by step: sign invariants, peaks, drift of conserved quantities and
// control effort.
package metrics
