package statement

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedFormat = errors.New("unrecognized statement format")
	ErrMissingField       = errors.New("missing required field")
	ErrMalformedAmount    = errors.New("malformed amount")
	ErrMalformedDate      = errors.New("malformed date")
	ErrTruncatedBlock     = errors.New("truncated movement block")
	ErrDirectionMismatch  = errors.New("direction does not agree with amount")
)

// ParseError reports why a statement was rejected. Kind is one of the
// sentinel errors above and is matched by errors.Is.
type ParseError struct {
	Kind  error
	Field string
	Line  int // 1-based, 0 when unknown
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += " " + e.Field
	}

	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}

	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Errorf is a shorthand for building a ParseError.
func Errorf(kind error, field string, line int, value string) *ParseError {
	return &ParseError{Kind: kind, Field: field, Line: line, Value: value}
}
