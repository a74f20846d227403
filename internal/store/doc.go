// Package store provides SQLite-backed storage for shapes graphs and
// compiled queries.
//
// Two tables:
//   - triples: named graphs imported from definition files, in load order
//   - compilations: one row per shape compiled by an engine run
//
// # Ordering
//
// Every read orders by seq, so a graph reloaded from the store presents
// values in the order the loader produced them and a run lists its shapes
// in input order. Compilation output depends on value order; reloading must
// not change it.
//
// # Term encoding
//
// Terms are stored as compact JSON objects ({"k":"iri","v":"..."}) with
// HTML escaping disabled, so identical terms always encode to identical
// text and the UNIQUE constraint on triples deduplicates them.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
