package ethereum

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("checksummed", func(t *testing.T) {
		addr, err := ParseAddress("0x3f9db3A5C03fD3c8C3C82C0a610D37F75ED4Fe34")
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x3f9db3A5C03fD3c8C3C82C0a610D37F75ED4Fe34"), addr)
	})

	t.Run("all lowercase carries no checksum", func(t *testing.T) {
		_, err := ParseAddress("0x3f9db3a5c03fd3c8c3c82c0a610d37f75ed4fe34")
		assert.NoError(t, err)
	})

	t.Run("bad checksum", func(t *testing.T) {
		_, err := ParseAddress("0x3F9db3A5C03fD3c8C3C82C0a610D37F75ED4Fe34")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bad EIP-55 checksum")
	})

	t.Run("missing prefix", func(t *testing.T) {
		_, err := ParseAddress("3f9db3A5C03fD3c8C3C82C0a610D37F75ED4Fe34")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing 0x prefix")
	})

	t.Run("invalid length", func(t *testing.T) {
		_, err := ParseAddress("0x3f9db3A5")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid length")
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, err := ParseAddress("0xGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGGG")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid hex")
	})
}

func TestHas0xPrefix(t *testing.T) {
	assert.True(t, Has0xPrefix("0x"))
	assert.True(t, Has0xPrefix("0X12"))
	assert.False(t, Has0xPrefix("12"))
	assert.False(t, Has0xPrefix(""))
}
