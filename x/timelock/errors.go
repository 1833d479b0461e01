package timelock

import "github.com/iov-one/vault/errors"

var (
	// ErrRecipientMismatch is returned when a completion names a recipient
	// other than the one the withdrawal was requested for.
	ErrRecipientMismatch = errors.Register(1701, "recipient mismatch")

	// ErrAmountMismatch is returned when a completion states an amount
	// other than the requested one.
	ErrAmountMismatch = errors.Register(1702, "amount mismatch")

	// ErrReviewPending is returned when a withdrawal is completed before
	// its review period has elapsed.
	ErrReviewPending = errors.Register(1703, "review period not elapsed")
)
