package deploy

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// Backend is the chain access a deployment run needs.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.DeployBackend
	ethereum.ContractCaller

	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Close()
}

// Dialer creates backends using go-ethereum's ethclient.
type Dialer struct{}

// NewDialer creates a new Dialer.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial connects to an RPC endpoint.
func (d *Dialer) Dial(ctx context.Context, rpcURL string) (Backend, error) {
	if rpcURL == "" {
		return nil, lperrors.New(lperrors.ErrConfiguration, "dial rpc", "empty endpoint")
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, lperrors.Network("dial rpc", err)
	}
	return client, nil
}

var _ Backend = (*ethclient.Client)(nil)
