package ethereum

import (
	"fmt"
	"math/big"
	"strings"
)

var unitDecimals = []struct {
	suffix   string
	decimals int
}{
	// Longest suffixes first so "gwei" is not read as "wei".
	{"ether", 18},
	{"gwei", 9},
	{"eth", 18},
	{"wei", 0},
}

// ParseValue parses amounts like "1ether", "0.5gwei" or "1000000000" into wei.
// A bare number is wei.
func ParseValue(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return big.NewInt(0), nil
	}

	decimals := 0
	for _, u := range unitDecimals {
		if strings.HasSuffix(s, u.suffix) {
			decimals = u.decimals
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			break
		}
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && len(frac) > decimals {
		return nil, fmt.Errorf("invalid value %q: more than %d decimal places", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

var weiPerEther = big.NewInt(1_000_000_000_000_000_000)

// FormatEther renders a wei amount as a decimal ether string without rounding.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(wei)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	q, r := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	if r.Sign() == 0 {
		return sign + q.String()
	}
	rs := r.String()
	frac := strings.TrimRight(strings.Repeat("0", 18-len(rs))+rs, "0")
	return sign + q.String() + "." + frac
}
