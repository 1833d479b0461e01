package sigs

import (
	"context"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/x"
)

type ctxKey struct{}

// withSigners is only called by the decorator, after verification.
func withSigners(ctx vault.Context, signers []vault.Condition) vault.Context {
	return context.WithValue(ctx, ctxKey{}, signers)
}

// Authenticate reads the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

func (Authenticate) GetConditions(ctx vault.Context) []vault.Condition {
	signers, _ := ctx.Value(ctxKey{}).([]vault.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx vault.Context, addr vault.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
