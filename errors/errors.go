package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors. Every error returned by the application should wrap one of
// them or an error registered by an extension.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	// ErrMsg is returned for a message that cannot be handled.
	ErrMsg = Register(4, "invalid message")
	// ErrModel is returned for an entity that cannot be persisted.
	ErrModel     = Register(5, "invalid model")
	ErrDuplicate = Register(6, "duplicate")
	// ErrHuman signals a code path that is unreachable unless the
	// application is wired incorrectly.
	ErrHuman = Register(7, "coding error")
	ErrEmpty = Register(9, "value is empty")
	ErrState = Register(10, "invalid state")
	ErrType  = Register(11, "invalid type")
	// ErrInsufficientAmount is returned when funds or fees are too low.
	ErrInsufficientAmount = Register(12, "insufficient amount")
	ErrAmount             = Register(13, "invalid amount")
	ErrInput              = Register(14, "invalid input")
	ErrOverflow           = Register(16, "an operation cannot be completed due to value overflow")
	ErrCurrency           = Register(17, "currency")
	ErrDeleted            = Register(18, "deleted")
	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(19, "database")
	// ErrIteratorDone is returned by an iterator with no more values.
	ErrIteratorDone = Register(20, "iterator done")
	ErrMetadata     = Register(21, "invalid metadata")

	// ErrPanic is used for recovered panics only. Its details are never
	// exposed outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// codes keeps every registered error. Code 1 is reserved for internal
// errors.
var codes = map[uint32]*Error{
	internalABCICode: {code: internalABCICode, desc: internalABCILog},
}

// Register declares a new root error. Codes must be unique and
// registering a code twice panics. Call it only during program
// initialization.
func Register(code uint32, description string) *Error {
	if prev, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already registered for %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	codes[code] = e
	return e
}

// Error is a root error, identified by its ABCI code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode is the code the error is reported with in ABCI responses.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is returns true if err is or wraps this error. Grouped errors match if
// any of them does. A nil *Error matches only nil errors.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	return find(err, func(x error) bool { return x == error(e) }) != nil
}

// Wrap adds a description to err and returns nil when err is nil. A stack
// trace is attached by the innermost wrap.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the stack trace for the %+v verb.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic assigned to err. It must be
// called with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

type unpacker interface {
	Unpack() []error
}

// children returns the errors directly wrapped or grouped by err.
func children(err error) []error {
	if u, ok := err.(unpacker); ok {
		return u.Unpack()
	}
	if c, ok := err.(causer); ok {
		return []error{c.Cause()}
	}
	return nil
}

// find walks the error tree depth first and returns the first error
// accepted by match.
func find(err error, match func(error) bool) error {
	if isNilErr(err) {
		return nil
	}
	if match(err) {
		return err
	}
	for _, child := range children(err) {
		if found := find(child, match); found != nil {
			return found
		}
	}
	return nil
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace carried by err or nil.
func stackTrace(err error) errors.StackTrace {
	found := find(err, func(e error) bool {
		_, ok := e.(stackTracer)
		return ok
	})
	if found == nil {
		return nil
	}
	return found.(stackTracer).StackTrace()
}

// isNilErr returns true for nil and for a typed nil pointer.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
