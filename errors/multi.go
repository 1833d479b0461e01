package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If an error is a multi error instance, it is flattened. The result is nil
// if all given errors are nil, or the error itself if only one is not nil.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr groups several errors. The first error determines the ABCI code.
type multiErr []error

func (m multiErr) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = fmt.Sprintf("* %s", e)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(m), strings.Join(msgs, "\n\t"))
}

// Unpack implements the unpacker interface.
func (m multiErr) Unpack() []error {
	return m
}

// ABCICode returns the code of the first grouped error.
func (m multiErr) ABCICode() uint32 {
	if len(m) == 0 {
		return SuccessABCICode
	}
	return abciCode(m[0])
}
