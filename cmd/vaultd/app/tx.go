package vaultd

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/sigs"
)

func init() {
	cdc.RegisterInterface((*vault.Msg)(nil))
}

// Tx carries a single message together with the signatures of its
// authors.
type Tx struct {
	Msg        vault.Msg            `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

// make sure tx fulfills all interfaces
var _ vault.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (vault.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Tx) Marshal() ([]byte, error)   { return cdc.Marshal(tx) }
func (tx *Tx) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, tx) }

// GetMsg returns the message of this transaction.
func (tx *Tx) GetMsg() (vault.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "msg")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of the
// signed data.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}
