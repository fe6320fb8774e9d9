package logger

// Phase-aware logging helpers.
// These functions log with the pipeline phase as a structured field, not in the message.
//
// Usage:
//
//	// Instead of:
//	logger.Debugw("promote: synthesized struct", "decl", name)
//
//	// Use:
//	logger.PhaseDebugw(logger.PhasePromote, "Synthesized struct", logger.FieldDecl, name)
//
// This makes logs filterable by phase and keeps messages clean.

// Pipeline phases, in execution order.
const (
	PhaseLoad     = "load"
	PhaseValidate = "validate"
	PhasePromote  = "promote"
	PhaseResolve  = "resolve"
	PhaseClassify = "classify"
	PhaseEmit     = "emit"
	PhaseWrite    = "write"
)

// PhaseInfow logs an info message tagged with phase
func PhaseInfow(phase, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, withPhase(phase, keysAndValues)...)
	}
}

// PhaseDebugw logs a debug message tagged with phase
func PhaseDebugw(phase, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, withPhase(phase, keysAndValues)...)
	}
}

// PhaseWarnw logs a warning message tagged with phase
func PhaseWarnw(phase, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, withPhase(phase, keysAndValues)...)
	}
}

// PhaseErrorw logs an error message tagged with phase
func PhaseErrorw(phase, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, withPhase(phase, keysAndValues)...)
	}
}

func withPhase(phase string, keysAndValues []interface{}) []interface{} {
	fields := make([]interface{}, 0, len(keysAndValues)+2)
	fields = append(fields, FieldPhase, phase)
	return append(fields, keysAndValues...)
}
