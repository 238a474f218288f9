// Package listdiff compares an old and new materialization of a bound
// list against the stable slot-identity set and classifies every element
// as added, removed, reordered, or overwritten.
//
// Identity preservation is the contract that matters: an element that
// survives a diff keeps the exact same ListIndex instance, so downstream
// consumers (the loop reconciler, per-element bindings) can use pointer
// identity instead of deep equality.
package listdiff
