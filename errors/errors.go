package errors

import (
	stderrors "errors"
	"fmt"
)

type Error interface {
	error

	Code() int
	Message() string
	Cause() error
}

// DefaultCode is the code used when none is given: 500, Internal Server
// Error.
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

func (err *codedError) Code() int {
	return err.code
}

func (err *codedError) Message() string {
	return err.msg
}

func (err *codedError) Cause() error {
	return err.cause
}

func (err *codedError) Unwrap() error {
	return err.cause
}

type ErrorEnricher func(error) error

// WithCode sets the code of the error. A nil error stays nil.
func WithCode(code int) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if e, ok := err.(*codedError); ok {
			e.code = code
			return e
		}

		return &codedError{
			msg:  err.Error(),
			code: code,
		}
	}
}

// WithCause attaches cause to the error. When the error does not carry a
// code yet, it takes the one of the cause.
func WithCause(cause error) ErrorEnricher {
	return func(err error) error {
		if err == nil {
			return nil
		}

		if e, ok := err.(*codedError); ok {
			e.cause = cause
			return e
		}

		code := DefaultCode
		var c Error
		if stderrors.As(cause, &c) {
			code = c.Code()
		}

		return &codedError{
			msg:   err.Error(),
			code:  code,
			cause: cause,
		}
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error
	err = &codedError{
		msg:  msg,
		code: DefaultCode,
	}

	for _, f := range fs {
		err = f(err)
	}

	return err
}

// Is and As forward to the standard library so that callers only import
// this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
