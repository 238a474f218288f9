package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Internal invariant violations (PB101-PB199)
	// ============================================

	"PB101": {
		Category: CategoryInternal,
		Message:  "Path node not found for known pattern",
		Detail:   "A property path produced by the tracked state layer has no node in the path tree. The path manager and the state layer disagree about which paths exist.",
		DocURL:   "https://pathbind.dev/docs/errors/PB101",
	},
	"PB102": {
		Category: CategoryInternal,
		Message:  "Dependency target path node missing",
		Detail:   "A dependency edge points at a path that was never registered in the path tree.",
		DocURL:   "https://pathbind.dev/docs/errors/PB102",
	},
	"PB103": {
		Category: CategoryInternal,
		Message:  "ListIndex is null for wildcarded ref",
		Detail:   "A property ref whose pattern contains a wildcard requires a list index identifying the concrete element.",
		DocURL:   "https://pathbind.dev/docs/errors/PB103",
	},
	"PB104": {
		Category: CategoryInternal,
		Message:  "List diff is null",
		Detail:   "The loop reconciler was invoked without a computed list diff. The prerequisite state read failed upstream.",
		DocURL:   "https://pathbind.dev/docs/errors/PB104",
	},
	"PB105": {
		Category: CategoryInternal,
		Message:  "Content not found for known list index",
		Detail:   "The content pool or the index side-table disagrees with the list diff about which contents exist.",
		DocURL:   "https://pathbind.dev/docs/errors/PB105",
	},
	"PB106": {
		Category: CategoryInternal,
		Message:  "Scheduler wait handle is null",
		Detail:   "A resolved completion signal had no registered waiter. The scheduler's internal bookkeeping is inconsistent.",
		DocURL:   "https://pathbind.dev/docs/errors/PB106",
	},

	// ============================================
	// Usage errors (PB201-PB299)
	// ============================================

	"PB201": {
		Category: CategoryUsage,
		Message:  "Binding value is not callable",
		Detail:   "An event binding resolved to a state member that is not a function.",
		DocURL:   "https://pathbind.dev/docs/errors/PB201",
	},
	"PB202": {
		Category: CategoryUsage,
		Message:  "Conflicting binding decorators",
		Detail:   "A binding declares decorators that cannot be combined.",
		DocURL:   "https://pathbind.dev/docs/errors/PB202",
	},
	"PB203": {
		Category: CategoryUsage,
		Message:  "Assignment not supported by binding kind",
		Detail:   "AssignValue was called on a binding kind that has no writable target.",
		DocURL:   "https://pathbind.dev/docs/errors/PB203",
	},
	"PB204": {
		Category: CategoryUsage,
		Message:  "State member is read-only",
		Detail:   "A write was attempted through a read-only state handle, or the member has no setter.",
		DocURL:   "https://pathbind.dev/docs/errors/PB204",
	},

	// ============================================
	// Asynchronous failures (PB301-PB399)
	// ============================================

	"PB301": {
		Category: CategoryAsync,
		Message:  "Async update callback failed",
		Detail:   "An asynchronous update callback returned an error. The batch still completed; already-applied mutations are not rolled back.",
		DocURL:   "https://pathbind.dev/docs/errors/PB301",
	},

	// ============================================
	// Configuration errors (PB401-PB499)
	// ============================================

	"PB401": {
		Category: CategoryConfig,
		Message:  "Invalid inspector configuration",
		Detail:   "The inspector configuration file could not be parsed or failed validation.",
		DocURL:   "https://pathbind.dev/docs/errors/PB401",
	},
}

// Registered returns true if the code exists in the registry.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}
