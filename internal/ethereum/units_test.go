package ethereum

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"", "0"},
		{"0", "0"},
		{"1000000000", "1000000000"},
		{"1ether", "1000000000000000000"},
		{"1 eth", "1000000000000000000"},
		{"0.5gwei", "500000000"},
		{"5gwei", "5000000000"},
		{"1.25ether", "1250000000000000000"},
		{".1ether", "100000000000000000"},
		{"42wei", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.String())
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "1.5wei", "1.0000000001gwei", "-1ether", "1..2ether"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseValue(in)
			assert.Error(t, err)
		})
	}
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		wei      *big.Int
		expected string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(1_000_000_000_000_000_000), "1"},
		{big.NewInt(1_500_000_000_000_000_000), "1.5"},
		{big.NewInt(1), "0.000000000000000001"},
		{big.NewInt(-2_500_000_000_000_000), "-0.0025"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEther(tt.wei))
		})
	}
}
