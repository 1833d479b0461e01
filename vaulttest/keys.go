package vaulttest

import (
	"encoding/binary"

	"github.com/iov-one/vault"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a freshly generated ed25519 private key.
func NewKey() ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return priv
}

// NewCondition returns a signature condition of a freshly generated key.
// The format matches conditions produced by the signature verification.
func NewCondition() vault.Condition {
	pub := NewKey().Public().(ed25519.PublicKey)
	return vault.NewCondition("sigs", "ed25519", pub)
}

// SequenceID returns an ID as used by the orm sequences.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
