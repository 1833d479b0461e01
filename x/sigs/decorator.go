package sigs

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Gas charged in CheckTx for every verified signature.
const signatureVerifyCost = 500

// RegisterQuery exposes the signer bucket under "/auth".
func RegisterQuery(qr vault.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies transaction signatures and passes the conditions of
// the signers down the handler chain.
type Decorator struct {
	optional bool
}

var _ vault.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects unsigned transactions.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy of the decorator that lets unsigned
// transactions through with no signers.
func (d Decorator) AllowMissingSigs() Decorator {
	d.optional = true
	return d
}

func (d Decorator) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	signers, err := d.verify(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(withSigners(ctx, signers), db, tx)
	if err != nil {
		return nil, err
	}
	res.GasPayment += int64(len(signers)) * signatureVerifyCost
	return res, nil
}

func (d Decorator) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	signers, err := d.verify(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(withSigners(ctx, signers), db, tx)
}

func (d Decorator) verify(ctx vault.Context, db vault.KVStore, tx vault.Tx) ([]vault.Condition, error) {
	var signers []vault.Condition
	if stx, ok := tx.(SignedTx); ok {
		var err error
		if signers, err = VerifyTxSignatures(db, stx, vault.GetChainID(ctx)); err != nil {
			return nil, errors.Wrap(err, "signatures")
		}
	}
	if len(signers) == 0 && !d.optional {
		return nil, errors.Wrap(errors.ErrUnauthorized, "unsigned transaction")
	}
	return signers, nil
}
