package sigs

import (
	"github.com/iov-one/vault/errors"
	"golang.org/x/crypto/ed25519"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction without the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is an ed25519 signature together with the public key and
// the sequence it was created with.
type StdSignature struct {
	Sequence  int64  `json:"sequence"`
	PubKey    []byte `json:"pub_key"`
	Signature []byte `json:"signature"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.PubKey) != ed25519.PublicKeySize {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) != ed25519.SignatureSize {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
