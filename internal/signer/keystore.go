package signer

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// Keystore exposes the accounts of a go-ethereum keystore directory.
// Keys stay encrypted until an account signs.
type Keystore struct {
	ks         *keystore.KeyStore
	passphrase string
}

// NewKeystore opens dir, which must already exist.
func NewKeystore(dir, passphrase string) (*Keystore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, lperrors.Configuration("open keystore", err)
	}
	if !info.IsDir() {
		return nil, lperrors.New(lperrors.ErrConfiguration, "open keystore", "%s is not a directory", dir)
	}
	return &Keystore{
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
	}, nil
}

// Accounts implements Source.
func (k *Keystore) Accounts() []Account {
	accts := k.ks.Accounts()
	out := make([]Account, 0, len(accts))
	for _, a := range accts {
		out = append(out, &keystoreAccount{parent: k, account: a})
	}
	return out
}

type keystoreAccount struct {
	parent  *Keystore
	account accounts.Account
}

func (a *keystoreAccount) Address() common.Address {
	return a.account.Address
}

func (a *keystoreAccount) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := a.parent.ks.SignTxWithPassphrase(a.account, a.parent.passphrase, tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("sign transaction with keystore account %s: %w", a.account.Address.Hex(), err)
	}
	return signed, nil
}

var _ Account = (*keystoreAccount)(nil)
