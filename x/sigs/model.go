package sigs

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
	"golang.org/x/crypto/ed25519"
)

const BucketName = "sigs"

// maxSequence is Number.MAX_SAFE_INTEGER, the biggest nonce javascript
// clients can represent.
const maxSequence = 1<<53 - 1

// UserData is the replay protection state of a signer. It is created with
// the first valid signature.
type UserData struct {
	Metadata *vault.Metadata `json:"metadata"`
	PubKey   []byte          `json:"pub_key"`
	Sequence int64           `json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error)   { return cdc.Marshal(u) }
func (u *UserData) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, u) }

func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	if len(u.PubKey) != ed25519.PublicKeySize {
		errs = errors.Append(errs, errors.Field("PubKey", errors.ErrInput, "%d bytes", len(u.PubKey)))
	}
	if u.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

// CheckAndIncrementSequence advances the sequence if it equals expected.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	switch {
	case u.Sequence != expected:
		return errors.Wrapf(ErrInvalidSequence, "want %d, got %d", u.Sequence, expected)
	case u.Sequence >= maxSequence:
		return errors.Wrap(errors.ErrOverflow, "sequence")
	}
	u.Sequence++
	return nil
}

// Condition returns the condition fulfilled by a signature of pub.
func Condition(pub []byte) vault.Condition {
	return vault.NewCondition("sigs", "ed25519", pub)
}

// NewBucket returns the signer bucket, keyed by the address of the
// signer condition.
func NewBucket() *orm.ModelBucket[UserData, *UserData] {
	return orm.NewModelBucket[UserData](BucketName)
}

// NextNonce returns the sequence the next signature of signer must carry.
// Unknown signers start at zero.
func NextNonce(db vault.ReadOnlyKVStore, signer vault.Address) (int64, error) {
	u, err := NewBucket().One(db, signer)
	if errors.ErrNotFound.Is(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "signer")
	}
	return u.Sequence, nil
}
