package monoerr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeLoad                      ErrorType = "LoadError"
	TypeUnknownConstant           ErrorType = "UnknownConstant"
	TypeUndefinedMethod           ErrorType = "UndefinedMethod"
	TypeUndefinedVariableOrMethod ErrorType = "UndefinedVariableOrMethod"
	TypeArityMismatch             ErrorType = "ArityMismatch"
	TypeNoMatchingOverload        ErrorType = "NoMatchingOverload"
)

// MonoError is the interface for all errors reported by the checker.
type MonoError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for checker errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// Span is a 1-based source range on a single line.
type Span struct {
	Line   int
	Column int
	Length int
}

// LoadError represents a malformed tree document.
type LoadError struct {
	BaseError
	Line     int
	Column   int
	FilePath string
}

func (e *LoadError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("[%s] %s:%d:%d %s", e.ErrType, e.FilePath, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%s] line %d:%d %s", e.ErrType, e.Line, e.Column, e.Msg)
}

// Frame is one active call recorded when a TypeError was raised.
type Frame struct {
	Line   int
	Method string
}

// TypeError is the structured diagnostic produced by inference. It carries
// everything needed to render a report; rendering happens in Render.
type TypeError struct {
	BaseError
	Span     Span
	Method   string
	Frames   []Frame // innermost first
	FilePath string
}

func (e *TypeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", e.ErrType))
	if e.Span.Line > 0 {
		if e.FilePath != "" {
			sb.WriteString(fmt.Sprintf("%s:%d:%d ", e.FilePath, e.Span.Line, e.Span.Column))
		} else {
			sb.WriteString(fmt.Sprintf("line %d:%d ", e.Span.Line, e.Span.Column))
		}
	}
	sb.WriteString(e.Msg)
	if e.Method != "" {
		sb.WriteString(fmt.Sprintf(" (in method %s)", e.Method))
	}
	return sb.String()
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if me, ok := m.Errors[0].(MonoError); ok {
			return me.Type()
		}
	}
	return "MultiError"
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// NewLoadError creates a new LoadError.
func NewLoadError(line, column int, msg string) *LoadError {
	return &LoadError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeLoad,
		},
		Line:   line,
		Column: column,
	}
}

// NewTypeError creates a TypeError of the given kind at span.
func NewTypeError(kind ErrorType, span Span, msg string) *TypeError {
	return &TypeError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: kind,
		},
		Span: span,
	}
}

// Kind reports the ErrorType of err if it is a MonoError, or "" otherwise.
func Kind(err error) ErrorType {
	if me, ok := err.(MonoError); ok {
		return me.Type()
	}
	return ""
}
