package utils

import (
	"github.com/iov-one/vault"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key under which the message path is indexed.
const ActionKey = "action"

// ActionTagger tags every delivered transaction with the path of its
// message. Clients can search for, or subscribe to, all transactions of a
// kind, for example "timelock/complete_withdrawal".
type ActionTagger struct{}

var _ vault.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver adds the tag to a successful result only.
func (ActionTagger) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())})
	return res, nil
}
