// Package inspector exposes a development-time HTTP surface over a
// running binding engine: the dependency graph, reconciler and pool
// counters, the update activity state, a Prometheus metrics endpoint, and
// a WebSocket stream of flushed batches.
//
// The inspector never participates in rendering; it reads the same public
// accessors any embedding application can reach and is safe to leave out
// of production builds entirely.
package inspector
