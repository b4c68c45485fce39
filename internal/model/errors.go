package model

import "fmt"

// ErrorKind classifies validation failures. All kinds except
// SchemaInconsistency are recoverable: the engine re-asks the same question
// with the error text attached.
type ErrorKind string

const (
	// BadFormat marks an unparseable date, time, number or boolean reply.
	BadFormat ErrorKind = "bad_format"
	// BlankRequired marks an empty reply to a mandatory scalar.
	BlankRequired ErrorKind = "blank_required"
	// NotAnOption marks a choice reply that resolved against no option.
	NotAnOption ErrorKind = "not_an_option"
	// NeedsSpecification marks a bare "other" with no detail; the caller
	// should re-prompt for the detail rather than reject the reply.
	NeedsSpecification ErrorKind = "needs_specification"
	// SchemaInconsistency marks a malformed or dangling schema reference.
	// It is a configuration error and aborts the session.
	SchemaInconsistency ErrorKind = "schema_inconsistency"
)

// ValidationError is the typed failure returned by the validator.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Recoverable reports whether the engine should re-prompt instead of
// aborting the session.
func (e *ValidationError) Recoverable() bool { return e.Kind != SchemaInconsistency }

// Errf builds a ValidationError.
func Errf(kind ErrorKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
