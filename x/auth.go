package x

import (
	"github.com/iov-one/vault"
)

// Authenticator tells which conditions authorized the current
// transaction. Handlers receive it in their constructors, so the source
// of authorization is not hard coded.
type Authenticator interface {
	// GetConditions returns all conditions the transaction fulfills.
	GetConditions(vault.Context) []vault.Condition
	// HasAddress returns true if any fulfilled condition has given
	// address.
	HasAddress(vault.Context, vault.Address) bool
}

// MultiAuth authorizes with the union of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

func ChainAuth(auths ...Authenticator) MultiAuth {
	return MultiAuth(auths)
}

// GetConditions returns the conditions of all authenticators, in order
// and without duplicates.
func (m MultiAuth) GetConditions(ctx vault.Context) []vault.Condition {
	var res []vault.Condition
	for _, auth := range m {
	next:
		for _, c := range auth.GetConditions(ctx) {
			for _, seen := range res {
				if seen.Equals(c) {
					continue next
				}
			}
			res = append(res, c)
		}
	}
	return res
}

func (m MultiAuth) HasAddress(ctx vault.Context, addr vault.Address) bool {
	for _, auth := range m {
		if auth.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}
