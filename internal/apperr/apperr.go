// Package apperr gives stereoscope's fatal error paths a machine-readable
// code alongside the usual wrapped error, the same sentinel-plus-code shape
// the teacher's internal/model/errors.go uses for its own error surface.
package apperr

import "errors"

// Sentinel errors for programmatic checking; never returned for expected,
// recoverable conditions such as a parent class that stays unresolved or a
// single unit that fails to parse — those degrade silently per spec §7.
var (
	ErrCyclicParent = errors.New("cyclic parent graph detected")
	ErrNoProvider   = errors.New("no language provider registered")
)

// Code is a machine-readable error classification, reported alongside the
// wrapped error text so callers (and the CLI's exit-code mapping) can branch
// on category without string matching.
type Code string

const (
	CodeNone       Code = ""
	CodeOptionFile Code = "ERR_OPTION_FILE"
	CodeParse      Code = "ERR_PARSE"
	CodeProducer   Code = "ERR_PRODUCER"
	CodeDB         Code = "ERR_DB"
	CodeConfig     Code = "ERR_CONFIG"
	CodeUnknown    Code = "ERR_UNKNOWN"
)

// Error pairs a Code with the underlying cause; its Unwrap method lets
// errors.Is/errors.As still reach the sentinel beneath it.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a Code. A nil err yields a nil *Error so call sites can
// write `return apperr.New(CodeParse, err)` unconditionally after an `if err
// != nil` check without an extra nil guard at the construction site.
func New(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}
