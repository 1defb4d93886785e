package engine

import (
	"fmt"
)

// Error represents a failure detected by the synchronization engine.
//
// The taxonomy:
//   - CONFIG: no default target configured; aborts prefetch and flush.
//   - PARSE: a target's content was unparseable; tagged with the target.
//   - ACCESS: a read, write, or backup primitive failed. Write failures
//     leave the target dirty so a later flush can retry.
//   - INTERNAL: a collaborator broke its contract; never retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Target identifies the affected target, when there is one.
	Target string

	// Op names the failed primitive for ACCESS errors ("read", "write",
	// "backup").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeConfig indicates missing engine configuration.
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeParse indicates a target's content could not be parsed.
	ErrCodeParse ErrorCode = "PARSE"

	// ErrCodeAccess indicates a file accessor primitive failed.
	ErrCodeAccess ErrorCode = "ACCESS"

	// ErrCodeInternal indicates a collaborator contract violation.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	switch {
	case e.Target != "" && e.Op != "":
		return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Op, e.Target, msg)
	case e.Target != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Target, msg)
	default:
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError creates a CONFIG error.
func NewConfigError(message string) *Error {
	return &Error{Code: ErrCodeConfig, Message: message}
}

// NewParseError creates a PARSE error tagged with the offending target.
func NewParseError(target string, err error) *Error {
	return &Error{Code: ErrCodeParse, Target: target, Message: "unparseable content", Err: err}
}

// NewAccessError creates an ACCESS error for a failed primitive.
func NewAccessError(target, op string, err error) *Error {
	return &Error{Code: ErrCodeAccess, Target: target, Op: op, Message: "accessor failure", Err: err}
}

// NewInternalError creates an INTERNAL error signaling a collaborator bug.
func NewInternalError(message string, err error) *Error {
	return &Error{Code: ErrCodeInternal, Message: message, Err: err}
}

// codeIs reports whether err is, wraps, or joins an engine Error with
// the code. Prefetch and flush return errors.Join of per-target
// failures, so every branch of the tree must be visited; errors.As
// alone would stop at the first *Error regardless of its code.
func codeIs(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Code == code {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, sub := range x.Unwrap() {
			if codeIs(sub, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return codeIs(x.Unwrap(), code)
	}
	return false
}

// IsConfigError reports whether err is a CONFIG error.
func IsConfigError(err error) bool { return codeIs(err, ErrCodeConfig) }

// IsParseError reports whether err is a PARSE error.
func IsParseError(err error) bool { return codeIs(err, ErrCodeParse) }

// IsAccessError reports whether err is an ACCESS error.
func IsAccessError(err error) bool { return codeIs(err, ErrCodeAccess) }

// IsInternalError reports whether err is an INTERNAL error.
func IsInternalError(err error) bool { return codeIs(err, ErrCodeInternal) }
