// Package ethereum provides address and unit helpers shared by the registry,
// the config layer and the CLI.
package ethereum

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress decodes a 0x-prefixed 20-byte hex address. Mixed-case input must
// carry a valid EIP-55 checksum; all-lower and all-upper input carries none and
// is accepted as is.
func ParseAddress(s string) (common.Address, error) {
	var addr common.Address
	if !Has0xPrefix(s) {
		return addr, fmt.Errorf("address %q: missing 0x prefix", s)
	}
	body := s[2:]
	if len(body) != 2*common.AddressLength {
		return addr, fmt.Errorf("address %q: invalid length %d", s, len(body))
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return addr, fmt.Errorf("address %q: invalid hex: %w", s, err)
	}
	copy(addr[:], b)

	if isMixedCase(body) && addr.Hex()[2:] != body {
		return common.Address{}, fmt.Errorf("address %q: bad EIP-55 checksum (want %s)", s, addr.Hex())
	}
	return addr, nil
}

// Has0xPrefix returns true if the string has a 0x prefix.
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
