package contracts

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

const hardhatArtifact = `{
	"_format": "hh-sol-artifact-1",
	"contractName": "LiquidityPoolFactory",
	"abi": [
		{"inputs":[],"stateMutability":"nonpayable","type":"constructor"},
		{"inputs":[],"name":"owner","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
	],
	"bytecode": "0x6080604052",
	"deployedBytecode": "0x60806040"
}`

const foundryArtifact = `{
	"abi": [
		{"inputs":[{"name":"fee","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"}
	],
	"bytecode": {"object": "0x6080604052", "linkReferences": {}}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadArtifact_Hardhat(t *testing.T) {
	a, err := LoadArtifact(writeFile(t, "LiquidityPoolFactory.json", hardhatArtifact))
	require.NoError(t, err)

	assert.Equal(t, "LiquidityPoolFactory", a.ContractName)
	assert.Equal(t, "0x6080604052", a.Bytecode.String())
	assert.Equal(t, "0x60806040", a.DeployedBytecode.String())

	parsed, err := a.ParsedABI()
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "owner")
}

func TestLoadArtifact_Foundry(t *testing.T) {
	a, err := LoadArtifact(writeFile(t, "Factory.json", foundryArtifact))
	require.NoError(t, err)

	code, err := a.Bytecode.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, code)
}

func TestLoadArtifact_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			wantErr: "load artifact",
		},
		{
			name:    "not json",
			path:    func(t *testing.T) string { return writeFile(t, "a.json", "<html>") },
			wantErr: "parse artifact",
		},
		{
			name:    "no abi",
			path:    func(t *testing.T) string { return writeFile(t, "a.json", `{"bytecode":"0x00"}`) },
			wantErr: "no abi",
		},
		{
			name:    "bad bytecode shape",
			path:    func(t *testing.T) string { return writeFile(t, "a.json", `{"abi":[],"bytecode":42}`) },
			wantErr: "bytecode must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArtifact(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, lperrors.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBytecode_Bytes(t *testing.T) {
	tests := []struct {
		hex     string
		want    []byte
		wantErr bool
	}{
		{hex: "", want: nil},
		{hex: "0x", want: nil},
		{hex: "0x6080", want: []byte{0x60, 0x80}},
		{hex: "6080", want: []byte{0x60, 0x80}},
		{hex: "0x60__$abc$__", wantErr: true},
		{hex: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got, err := Bytecode{hex: tt.hex}.Bytes()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolFactory_DeployCode(t *testing.T) {
	a, err := ParseArtifact([]byte(hardhatArtifact))
	require.NoError(t, err)

	f, err := NewPoolFactory(a)
	require.NoError(t, err)
	assert.Equal(t, PoolFactoryName, f.Name())

	code, err := f.DeployCode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, code)

	_, err = f.DeployCode(big.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lperrors.ErrConfiguration))
}

func TestPoolFactory_DeployCodeWithArgs(t *testing.T) {
	a, err := ParseArtifact([]byte(foundryArtifact))
	require.NoError(t, err)

	f, err := NewPoolFactory(a)
	require.NoError(t, err)

	code, err := f.DeployCode(big.NewInt(300))
	require.NoError(t, err)
	require.Len(t, code, 5+32)
	assert.Equal(t, common.LeftPadBytes(big.NewInt(300).Bytes(), 32), code[5:])
}

func TestPoolFactory_EmptyBytecode(t *testing.T) {
	a, err := ParseArtifact([]byte(`{"contractName":"IFactory","abi":[],"bytecode":"0x"}`))
	require.NoError(t, err)

	f, err := NewPoolFactory(a)
	require.NoError(t, err)

	_, err = f.DeployCode()
	require.Error(t, err)
	assert.True(t, errors.Is(err, lperrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "IFactory artifact has no bytecode")
}

// mockCaller implements ethereum.ContractCaller.
type mockCaller struct {
	mock.Mock
}

func (m *mockCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func TestStaking_Times(t *testing.T) {
	s, err := NewStaking()
	require.NoError(t, err)

	addr := common.HexToAddress("0x812Db49B5e44A079D128Fb636671b1E5A5422e81")
	selector := func(method string) any {
		id := s.abi.Methods[method].ID
		return mock.MatchedBy(func(call ethereum.CallMsg) bool {
			return call.To != nil && *call.To == addr && bytes.Equal(call.Data, id)
		})
	}

	caller := new(mockCaller)
	caller.On("CallContract", mock.Anything, selector("startTime"), (*big.Int)(nil)).Return(word(1_700_000_000), nil)
	caller.On("CallContract", mock.Anything, selector("endTime"), (*big.Int)(nil)).Return(word(1_710_000_000), nil)

	times, err := s.Times(context.Background(), caller, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), times.Start.Int64())
	assert.Equal(t, int64(1_710_000_000), times.End.Int64())
	caller.AssertExpectations(t)
}

func TestStaking_TimesErrors(t *testing.T) {
	s, err := NewStaking()
	require.NoError(t, err)
	addr := common.HexToAddress("0x812Db49B5e44A079D128Fb636671b1E5A5422e81")

	t.Run("call fails", func(t *testing.T) {
		caller := new(mockCaller)
		caller.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := s.Times(context.Background(), caller, addr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "call startTime")
	})

	t.Run("no code at address", func(t *testing.T) {
		caller := new(mockCaller)
		caller.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return([]byte{}, nil)

		_, err := s.Times(context.Background(), caller, addr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty result")
	})
}
