// Package errors provides error values that carry an HTTP status code, so
// that handlers can translate service failures into responses without
// inspecting message strings.
package errors

import "fmt"

// Error is an error with an associated HTTP status code.
type Error interface {
	error

	Code() int
	Cause() error
}

// DefaultCode is used when no code is attached to an error.
var DefaultCode = 500

type codedError struct {
	code  int
	msg   string
	cause error
}

func (err *codedError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *codedError) Code() int { return err.code }

func (err *codedError) Cause() error { return err.cause }

func (err *codedError) Unwrap() error { return err.cause }

// Enricher modifies an error, typically to attach a code or a cause.
type Enricher func(error) error

// WithCode attaches an HTTP status code to the error.
func WithCode(code int) Enricher {
	return func(err error) error {
		if coded, ok := err.(*codedError); ok {
			coded.code = code
			return coded
		}
		return &codedError{code: code, msg: err.Error()}
	}
}

// WithCause attaches an underlying cause to the error.
func WithCause(cause error) Enricher {
	return func(err error) error {
		if coded, ok := err.(*codedError); ok {
			coded.cause = cause
			return coded
		}
		return &codedError{code: DefaultCode, msg: err.Error(), cause: cause}
	}
}

// New creates an error with the given message and enrichers.
func New(msg string, fs ...Enricher) error {
	var err error = &codedError{code: DefaultCode, msg: msg}
	for _, f := range fs {
		err = f(err)
	}
	return err
}

type annotated struct {
	err   error
	cause error
}

func (a *annotated) Error() string { return fmt.Sprintf("%s: %v", a.err, a.cause) }

func (a *annotated) Code() int { return CodeOf(a.err) }

func (a *annotated) Cause() error { return a.cause }

func (a *annotated) Unwrap() []error { return []error{a.err, a.cause} }

// Because annotates err with an underlying cause. The result keeps err's code
// and still matches err under errors.Is, so shared sentinel values are never
// mutated.
func Because(err, cause error) error {
	if cause == nil {
		return err
	}
	return &annotated{err: err, cause: cause}
}

// CodeOf returns the HTTP status code carried by err, or DefaultCode if err
// carries none.
func CodeOf(err error) int {
	if coded, ok := err.(Error); ok {
		return coded.Code()
	}
	return DefaultCode
}
