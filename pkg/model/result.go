package model

import "fmt"

// EngineResult is the uniform envelope every engine entry point returns.
// Engines never panic or abort the process (§7 propagation policy); callers
// inspect Success/Errors/Warnings instead of relying on a non-nil error.
type EngineResult struct {
	Success  bool
	Skipped  bool
	Errors   []string
	Warnings []string
	Stats    map[string]interface{}
}

// NewEngineResult returns a successful, empty result ready for accumulation.
func NewEngineResult() *EngineResult {
	return &EngineResult{
		Success: true,
		Stats:   make(map[string]interface{}),
	}
}

// AddError records a failure and flips Success to false.
func (r *EngineResult) AddError(format string, args ...interface{}) {
	r.Success = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a non-fatal issue without affecting Success.
func (r *EngineResult) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// MarkSkipped marks the result as a no-op completion (§7 ScheduleError:
// "window outside assignment bounds -> skipped: true with zero counts").
func (r *EngineResult) MarkSkipped(reason string) {
	r.Skipped = true
	r.Stats["skip_reason"] = reason
}
