package errors

import "fmt"

type InvalidStateError struct {
	msg string
}

func NewInvalidStateErrorf(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.msg
}

// NilArgumentError is raised by constructors given a nil dependency.
type NilArgumentError struct {
	argument string
}

func NewNilArgumentError(argument string) *NilArgumentError {
	return &NilArgumentError{argument: argument}
}

func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("argument '%s' must not be nil", e.argument)
}
