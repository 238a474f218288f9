package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryInternal Category = "internal"
	CategoryUsage    Category = "usage"
	CategoryAsync    Category = "async"
	CategoryConfig   Category = "config"
)

// BindError is a structured error with a stable code and diagnostic context.
type BindError struct {
	// Code is a unique error identifier (e.g., "PB101").
	Code string

	// Category is the error type (internal, usage, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Context carries structured diagnostic values (pattern, index, bind
	// name, event name, ...).
	Context map[string]any

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s%s", e.Code, e.Message, e.contextSuffix())
	}
	return e.Message + e.contextSuffix()
}

// contextSuffix renders the context map deterministically for diagnostics.
func (e *BindError) contextSuffix() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
	}
	b.WriteString(")")
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BindError) Unwrap() error {
	return e.Wrapped
}

// With adds a structured context value to the error.
func (e *BindError) With(key string, value any) *BindError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BindError) WithSuggestion(s string) *BindError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *BindError) WithDetail(d string) *BindError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *BindError) Wrap(err error) *BindError {
	e.Wrapped = err
	return e
}

// New creates a BindError from a registered error code.
func New(code string) *BindError {
	template, ok := registry[code]
	if !ok {
		return &BindError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BindError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new BindError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BindError {
	return &BindError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BindError.
func FromError(err error, code string) *BindError {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BindError); ok {
		return be
	}
	return New(code).Wrap(err)
}

// IsCode reports whether err is a BindError carrying the given code.
func IsCode(err error, code string) bool {
	be, ok := err.(*BindError)
	return ok && be.Code == code
}
