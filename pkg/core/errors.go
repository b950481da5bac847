package core

import (
	"fmt"
)

// ErrorCategory classifies a resolution error for reporting.
type ErrorCategory int

const (
	ErrCategoryNone     ErrorCategory = iota
	ErrCategoryParse                  // XML could not be parsed at all
	ErrCategoryMatch                  // no candidate met the confidence floor
	ErrCategorySafety                 // candidates rejected by safety policy
	ErrCategorySelector               // selector is incomplete or inconsistent
	ErrCategoryScript                 // candidate filter script failed
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryParse:
		return "parse"
	case ErrCategoryMatch:
		return "match"
	case ErrCategorySafety:
		return "safety"
	case ErrCategorySelector:
		return "selector"
	case ErrCategoryScript:
		return "script"
	default:
		return "none"
	}
}

// ResolutionError is a structured error with category and machine-readable
// code, carrying the per-facet explanation of why resolution failed.
type ResolutionError struct {
	Category    ErrorCategory
	Code        string   // element_no_match, ambiguous_match, ...
	Message     string   // human-readable message
	Explanation []string // facet-level reasoning from the matcher
	Cause       error
}

// NewResolutionError builds an error with the given category, code and
// message.
func NewResolutionError(category ErrorCategory, code, message string) *ResolutionError {
	return &ResolutionError{Category: category, Code: code, Message: message}
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches predefined errors by category and code so wrapped copies still
// satisfy errors.Is(err, core.ErrNoMatch).
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithExplanation returns a copy of the error carrying the matcher's
// explanation strings.
func (e *ResolutionError) WithExplanation(lines []string) *ResolutionError {
	return &ResolutionError{
		Category:    e.Category,
		Code:        e.Code,
		Message:     e.Message,
		Explanation: lines,
		Cause:       e.Cause,
	}
}

// WithCause returns a copy of the error with the given cause.
func (e *ResolutionError) WithCause(cause error) *ResolutionError {
	return &ResolutionError{
		Category:    e.Category,
		Code:        e.Code,
		Message:     e.Message,
		Explanation: e.Explanation,
		Cause:       cause,
	}
}

// Predefined errors.
var (
	ErrNoMatch = &ResolutionError{
		Category: ErrCategoryMatch,
		Code:     "element_no_match",
		Message:  "no candidate element met the confidence floor",
	}
	ErrAmbiguous = &ResolutionError{
		Category: ErrCategoryMatch,
		Code:     "ambiguous_match",
		Message:  "multiple candidates scored too close to pick one safely",
	}
	ErrUnsafeTarget = &ResolutionError{
		Category: ErrCategorySafety,
		Code:     "unsafe_target",
		Message:  "best candidate rejected by safety policy",
	}
	ErrIncompleteSelector = &ResolutionError{
		Category: ErrCategorySelector,
		Code:     "incomplete_selector",
		Message:  "selector carries no usable identifying information",
	}
)
