// Package assert provides fatal assertions that understand registered
// errors and field errors.
package assert

import (
	"reflect"

	"github.com/iov-one/vault/errors"
	"github.com/stretchr/testify/assert"
)

// Tester is the part of testing.TB the assertions use.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test unless value is nil or a typed nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of an error.
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails the test if the values are not equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !assert.ObjectsAreEqual(want, got) {
		t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	if ok, _ := didPanic(fn); !ok {
		t.Fatal("panic expected")
	}
}

func didPanic(fn func()) (ok bool, value interface{}) {
	defer func() {
		if value = recover(); value != nil {
			ok = true
		}
	}()
	fn()
	return false, nil
}

// FieldError fails the test unless err holds an error of given kind for
// the field. With a nil kind it fails if any error for the field exists.
func FieldError(t Tester, err error, field string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, field)
	if want == nil {
		if len(errs) != 0 {
			t.Fatalf("want no %q field error, got %q", field, errs)
		}
		return
	}
	for _, e := range errs {
		if want.Is(e) {
			return
		}
	}
	t.Fatalf("no %q field error of kind %q in %+v", field, want, err)
}

// IsErr fails the test unless got is want or, for a registered error,
// wraps it.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
