package deploy

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ace-smart/liquidity-pool-factory/internal/contracts"
	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
	"github.com/ace-smart/liquidity-pool-factory/internal/signer"
)

// Anvil's first deterministic key. Publicly known, test use only.
const anvilKey0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	anvilAddr0      = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testnetFactory  = common.HexToAddress("0x84ebF11e1c5b39739e0633e67e1284A38D9a8faD")
	stakingContract = common.HexToAddress("0x812Db49B5e44A079D128Fb636671b1E5A5422e81")
)

const factoryArtifact = `{
	"contractName": "LiquidityPoolFactory",
	"abi": [{"inputs":[],"stateMutability":"nonpayable","type":"constructor"}],
	"bytecode": "0x6080604052348015600f57600080fd5b50"
}`

// MockBackend is a mock implementation of Backend for testing.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockBackend) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	args := m.Called(ctx, account, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, account, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) Close() {
	m.Called()
}

var _ Backend = (*MockBackend)(nil)

// methods returns the backend methods called, in order.
func (m *MockBackend) methods() []string {
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Method)
	}
	return out
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func testFactory(t *testing.T) *contracts.PoolFactory {
	t.Helper()
	a, err := contracts.ParseArtifact([]byte(factoryArtifact))
	require.NoError(t, err)
	f, err := contracts.NewPoolFactory(a)
	require.NoError(t, err)
	return f
}

// testOptions returns a testnet redeploy with staking off.
func testOptions(t *testing.T) Options {
	return Options{
		Network:         registry.Testnet,
		DeployerAddress: anvilAddr0,
		Redeploy:        true,
		StakingAddress:  stakingContract,
		Factory:         testFactory(t),
	}
}

func newTestDeployer(t *testing.T, opts Options, backend *MockBackend) *Deployer {
	t.Helper()
	keys, err := signer.NewKeySet([]string{anvilKey0})
	require.NoError(t, err)
	reg, err := registry.Default()
	require.NoError(t, err)

	d, err := New(opts, backend, keys, reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return d
}
