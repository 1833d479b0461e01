package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field returns err annotated with the name of the attribute it was
// created for. Nested attributes use dot notation, for example
// "Amount.Ticker". It returns nil if err is nil.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{field: name, desc: description, parent: err}
}

// AppendField appends a field error to errs. A nil fieldErr is ignored.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	field  string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns all errors created for given field name. Errors of
// other fields are inspected as well, so nested field errors are found.
func FieldErrors(err error, name string) []error {
	if isNilErr(err) {
		return nil
	}
	if f, ok := err.(fielder); ok && f.Field() == name {
		return []error{err}
	}
	var res []error
	for _, child := range children(err) {
		res = append(res, FieldErrors(child, name)...)
	}
	return res
}
