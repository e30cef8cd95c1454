package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// KeySet holds raw private keys in the order they were configured.
//
// Safe for concurrent use after construction.
type KeySet struct {
	accounts []Account
}

// NewKeySet parses hex-encoded private keys. The 0x prefix is optional.
// Empty entries are skipped.
func NewKeySet(hexKeys []string) (*KeySet, error) {
	ks := &KeySet{}
	seen := make(map[common.Address]int, len(hexKeys))

	for i, raw := range hexKeys {
		hexKey := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
		if hexKey == "" {
			continue
		}
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			// Never echo the key itself.
			return nil, lperrors.New(lperrors.ErrConfiguration, "parse private keys",
				"key #%d: %v", i+1, err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if prev, dup := seen[addr]; dup {
			return nil, lperrors.New(lperrors.ErrConfiguration, "parse private keys",
				"key #%d duplicates key #%d (%s)", i+1, prev, addr.Hex())
		}
		seen[addr] = i + 1
		ks.accounts = append(ks.accounts, &keyAccount{key: key, address: addr})
	}
	return ks, nil
}

// Accounts implements Source.
func (k *KeySet) Accounts() []Account {
	out := make([]Account, len(k.accounts))
	copy(out, k.accounts)
	return out
}

// Len returns the number of keys.
func (k *KeySet) Len() int {
	return len(k.accounts)
}

type keyAccount struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func (a *keyAccount) Address() common.Address {
	return a.address
}

func (a *keyAccount) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), a.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

var _ Account = (*keyAccount)(nil)
