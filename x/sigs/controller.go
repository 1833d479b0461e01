package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"golang.org/x/crypto/ed25519"
)

// signVersion is the first part of every signed payload.
var signVersion = [4]byte{0, 0xCA, 0xFE, 0}

// BuildSignBytes returns the sha512 digest that is signed for a
// transaction. The digest covers:
//
//   version | len(chainID) | chainID | sequence (8 bytes, big endian) | tx
//
// Including the chain and the sequence prevents replays.
func BuildSignBytes(tx []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrapf(ErrInvalidSequence, "negative sequence %d", seq)
	}
	if !vault.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	payload := make([]byte, 0, len(signVersion)+1+len(chainID)+8+len(tx))
	payload = append(payload, signVersion[:]...)
	payload = append(payload, byte(len(chainID)))
	payload = append(payload, chainID...)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))
	payload = append(payload, nonce[:]...)
	payload = append(payload, tx...)
	digest := sha512.Sum512(payload)
	return digest[:], nil
}

// SignTx returns the signature of the transaction by given key.
func SignTx(key ed25519.PrivateKey, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	raw, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	digest, err := BuildSignBytes(raw, chainID, seq)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		PubKey:    key.Public().(ed25519.PublicKey),
		Signature: ed25519.Sign(key, digest),
		Sequence:  seq,
	}, nil
}

// VerifyTxSignatures verifies every signature of the transaction and
// increments the sequence of each signer. It returns the conditions of
// all signers, nil for an unsigned transaction, or an error if any
// signature is invalid.
func VerifyTxSignatures(db vault.KVStore, tx SignedTx, chainID string) ([]vault.Condition, error) {
	raw, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "sign bytes")
	}
	sigs := tx.GetSignatures()
	if len(sigs) == 0 {
		return nil, nil
	}
	conds := make([]vault.Condition, len(sigs))
	for i, sig := range sigs {
		if conds[i], err = verifySignature(db, sig, raw, chainID); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
	}
	return conds, nil
}

func verifySignature(db vault.KVStore, sig *StdSignature, raw []byte, chainID string) (vault.Condition, error) {
	if sig == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	cond := Condition(sig.PubKey)
	users := NewBucket()
	user, err := users.One(db, cond.Address())
	if errors.ErrNotFound.Is(err) {
		user, err = &UserData{Metadata: &vault.Metadata{Schema: 1}, PubKey: sig.PubKey}, nil
	}
	if err != nil {
		return nil, err
	}

	digest, err := BuildSignBytes(raw, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !ed25519.Verify(ed25519.PublicKey(user.PubKey), digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if _, err := users.Put(db, cond.Address(), user); err != nil {
		return nil, err
	}
	return cond, nil
}
