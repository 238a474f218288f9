// Package errors provides structured, actionable error values for pathbind.
//
// Every error carries a stable code (e.g., "PB103"), a category, a short
// message, and a structured context map for diagnostics.
//
// # Error Categories
//
//   - internal: invariant violations inside the reactivity core. These are
//     never recovered locally; the dependency graph, pool, or ref-identity
//     system disagrees with reality and the error is propagated as-is.
//   - usage: caller mistakes (non-callable binding value, conflicting
//     decorators, assigning to an unwritable binding).
//   - async: failures of asynchronous update callbacks, wrapped with
//     context and re-raised so they never vanish silently.
//   - config: configuration parse/validation failures.
//
// # Usage
//
//	err := errors.New("PB103").
//	    With("pattern", ref.Info.Pattern)
//
//	// PB103: ListIndex is null for wildcarded ref (pattern=users.*.name)
package errors
