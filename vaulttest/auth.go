package vaulttest

import (
	"context"

	"github.com/iov-one/vault"
)

// Auth authenticates a fixed set of conditions.
type Auth struct {
	Signer  vault.Condition
	Signers []vault.Condition
}

func (a *Auth) GetConditions(vault.Context) []vault.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	return append(a.Signers, a.Signer)
}

func (a *Auth) HasAddress(ctx vault.Context, addr vault.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context under Key.
type CtxAuth struct {
	Key string
}

// SetConditions returns a context authenticating given conditions.
func (a *CtxAuth) SetConditions(ctx vault.Context, conds ...vault.Condition) vault.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx vault.Context) []vault.Condition {
	conds, _ := ctx.Value(a.Key).([]vault.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx vault.Context, addr vault.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []vault.Condition, addr vault.Address) bool {
	for _, c := range conds {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
