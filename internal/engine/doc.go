// Package engine drives the shape compiler over a whole shapes graph.
//
// A run compiles a list of shapes, each independently, on a bounded pool
// of workers. Results are collected by input position, so a run's output
// does not depend on scheduling.
//
// Failure handling follows the compiler's error classes:
//   - Definition errors and unbound names skip the shape. The run records
//     a ShapeFailure and continues.
//   - A contract violation stops the run. Workers still running see a
//     canceled context and return; the run returns a RunError and no
//     partial result.
//
// Each run gets a UUIDv7 id. With a store attached, every shape of a
// completed run is recorded under that id in input order.
//
// Before compiling, a run looks for shape reference cycles. Cycles are
// logged and returned as warnings; the compiler's depth ceiling still
// decides whether a cyclic shape fails.
package engine
