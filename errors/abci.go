package errors

import (
	"errors"
	"fmt"
)

// SuccessABCICode is the code of a successful ABCI response.
const SuccessABCICode = 0

// Errors that were not registered are reported with the internal code and,
// outside of debug mode, a generic message.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and the log of an ABCI response for err. In
// debug mode the full error, including the stack trace, is logged.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalABCICode:
		return code, internalABCILog
	default:
		return code, err.Error()
	}
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first registered error wrapped by err.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	found := find(err, func(e error) bool {
		_, ok := e.(coder)
		return ok
	})
	if found == nil {
		return internalABCICode
	}
	return found.(coder).ABCICode()
}

// Redact replaces panics and unregistered errors with a generic internal
// error. In debug mode err is returned unchanged.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalABCICode {
		return errors.New(internalABCILog)
	}
	return err
}
