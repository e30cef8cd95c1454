package registry

import (
	"strings"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// Network selects one of the address sets in the registry.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Networks returns every supported network in a stable order.
func Networks() []Network {
	return []Network{Mainnet, Testnet}
}

// ParseNetwork maps an operator-supplied name to a Network. An empty name
// selects testnet; anything else outside the supported set is rejected.
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case Mainnet:
		return Mainnet, nil
	case Testnet, "":
		return Testnet, nil
	default:
		return "", lperrors.New(lperrors.ErrConfiguration, "parse network",
			"unrecognized network %q (want mainnet or testnet)", s)
	}
}

// String implements fmt.Stringer.
func (n Network) String() string {
	return string(n)
}

func (n Network) valid() bool {
	return n == Mainnet || n == Testnet
}
