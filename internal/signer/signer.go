// Package signer provides the accounts a deployment can sign with.
package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// Account is a single signing identity.
type Account interface {
	// Address returns the account's address.
	Address() common.Address

	// SignTx signs tx for the given chain and returns the signed copy.
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Source lists the accounts available to a run.
type Source interface {
	Accounts() []Account
}

// Select returns the account of src whose address equals addr.
func Select(src Source, addr common.Address) (Account, error) {
	if src != nil {
		for _, acct := range src.Accounts() {
			if acct.Address() == addr {
				return acct, nil
			}
		}
	}
	return nil, lperrors.New(lperrors.ErrAccountNotFound, "select account",
		"%s is not among the configured accounts", addr.Hex())
}

// Multi concatenates several sources, in order.
type Multi []Source

// Accounts implements Source.
func (m Multi) Accounts() []Account {
	var out []Account
	for _, src := range m {
		if src == nil {
			continue
		}
		out = append(out, src.Accounts()...)
	}
	return out
}

// Addresses returns the addresses of every account in src.
func Addresses(src Source) []common.Address {
	accts := src.Accounts()
	out := make([]common.Address, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Address())
	}
	return out
}
