package mzident

import "fmt"

// NotReadyError is returned when a write or section operation is invoked
// before the session has acquired its sink via Writer.Begin. The call cannot
// be retried; begin the session first.
type NotReadyError struct {
	Op string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("mzident: %s called before the writer was started; "+
		"call Begin (or use Generate) before writing", e.Op)
}

// ScopeViolationError indicates a breach of element nesting discipline:
// closing a scope out of LIFO order, or writing after the relevant scope
// (or the whole session) was closed. It is a defect in the calling code and
// is never retried.
type ScopeViolationError struct {
	Op     string
	Elem   string
	Reason string
}

func (e *ScopeViolationError) Error() string {
	if e.Elem != "" {
		return fmt.Sprintf("mzident: %s %q: %s", e.Op, e.Elem, e.Reason)
	}
	return fmt.Sprintf("mzident: %s: %s", e.Op, e.Reason)
}

// ValidationError is returned when an entity is missing a required field or
// a field is malformed. The in-progress section write is abandoned; output
// already flushed stays in the sink.
type ValidationError struct {
	Elem   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mzident: invalid %s: field %s %s", e.Elem, e.Field, e.Reason)
}

func invalid(elem, field, reason string) *ValidationError {
	return &ValidationError{Elem: elem, Field: field, Reason: reason}
}
