package validation

import (
	"strings"
)

// RootField names the payload itself when it is not a JSON object.
const RootField = "(root)"

// Violation reasons that do not come from a field constraint.
const (
	ReasonRequired     = "field required"
	ReasonUnknownField = "extra fields not permitted"
	ReasonNotObject    = "must be a JSON object"
	ReasonNotString    = "must be a string"
	ReasonNotInteger   = "must be an integer"
	ReasonNotNumber    = "must be a number"
	ReasonNotBoolean   = "must be a boolean"
	ReasonInvalidEmail = "must be a valid email address"
	ReasonEmptyText    = "must not be empty"
)

// Violation describes one rejected field.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every violated field of a rejected payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the names of the violated fields in report order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func newError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func prefixed(prefix string, violations []Violation) []Violation {
	out := make([]Violation, len(violations))
	for i, v := range violations {
		out[i] = Violation{Field: prefix + "." + v.Field, Reason: v.Reason}
	}
	return out
}
