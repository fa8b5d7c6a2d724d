// Package creds resolves per-account vendor credentials.
package creds

import (
	"fmt"

	"github.com/crimson-sun/szaudit/internal/model"
)

// Resolver looks up the credentials for a named account. Resolution happens
// once per run; the returned account is immutable within the run.
type Resolver interface {
	Resolve(accountName string) (model.Account, error)
}

// StaticResolver resolves accounts from an in-memory map, as loaded from
// configuration.
type StaticResolver struct {
	accounts map[string]model.Account
}

// NewStaticResolver builds a resolver over the given accounts.
func NewStaticResolver(accounts map[string]model.Account) *StaticResolver {
	return &StaticResolver{accounts: accounts}
}

// Resolve returns the named account. Unknown names and accounts without a
// customer identifier are errors; the run cannot proceed without a target
// host.
func (r *StaticResolver) Resolve(accountName string) (model.Account, error) {
	acct, ok := r.accounts[accountName]
	if !ok {
		return model.Account{}, fmt.Errorf("creds: unknown account %q", accountName)
	}
	if acct.CustomerName == "" {
		return model.Account{}, fmt.Errorf("creds: account %q has no customername", accountName)
	}
	return acct, nil
}
