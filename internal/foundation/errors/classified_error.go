package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is an error with a category, a severity and context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	prefix := fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
	if id, ok := e.context.GetString(KeyExampleID); ok {
		prefix += " (" + id + ")"
	}
	if e.cause != nil {
		return prefix + ": " + e.cause.Error()
	}
	return prefix
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }

func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }

// Message returns the message without category prefix or cause.
func (e *ClassifiedError) Message() string { return e.message }

func (e *ClassifiedError) Cause() error { return e.cause }

func (e *ClassifiedError) Context() ErrorContext { return e.context }

// WithContext returns a copy of e with key set.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.context = e.context.Merge(ErrorContext{key: value})
	return &cp
}

// ForExample returns a copy of e attributed to example id.
func (e *ClassifiedError) ForExample(id string) *ClassifiedError {
	return e.WithContext(KeyExampleID, id)
}

// Is matches on category and message so errors built by the same
// constructor compare equal under errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

func (e *ClassifiedError) IsCategory(category ErrorCategory) bool { return e.category == category }

// IsFatal reports whether the error aborts the run.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether err's chain carries a ClassifiedError of category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// IsExampleFailure reports whether err is a per-example parse or transform
// failure that must not abort a batch.
func IsExampleFailure(err error) bool {
	return HasCategory(err, CategoryParse) || HasCategory(err, CategoryTransform)
}

// ExampleID returns the example id attached to err, if any.
func ExampleID(err error) (string, bool) {
	if classified, ok := AsClassified(err); ok {
		return classified.context.GetString(KeyExampleID)
	}
	return "", false
}
