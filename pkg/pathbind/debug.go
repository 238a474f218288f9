package pathbind

import "log"

// DebugMode enables debug logging throughout the pathbind package.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// debugf logs a scheduler-internal message when DebugMode is on.
func debugf(format string, args ...any) {
	if DebugMode {
		log.Printf("[pathbind] "+format, args...)
	}
}
