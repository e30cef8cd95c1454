// Package registry holds the per-network addresses of deployed contracts.
//
// The table is embedded at build time and immutable at run time. Lookups fail
// with errors.ErrConfiguration instead of returning an empty address, because
// a silently wrong address sends transactions to the wrong contract.
package registry

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/ace-smart/liquidity-pool-factory/internal/ethereum"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

//go:embed addresses.yaml
var addressesYAML []byte

// Registry is an immutable address table keyed by network and name path.
type Registry struct {
	networks map[Network]*networkSet
}

// Entry is one registered address with its dotted path.
type Entry struct {
	Path    string `json:"path"`
	Address string `json:"address"`
}

type networkSet struct {
	chainID uint64
	root    *node
	retired map[string][]string
}

// node is either a leaf holding an address or a table of named children.
type node struct {
	address  string
	children map[string]*node
}

type fileNetwork struct {
	ChainID   uint64              `yaml:"chainId"`
	Contracts yaml.Node           `yaml:"contracts"`
	Retired   map[string][]string `yaml:"retired"`
}

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Load(bytes.NewReader(addressesYAML))
})

// Default returns the embedded registry. It is parsed once per process.
func Default() (*Registry, error) {
	return loadDefault()
}

// LoadFile reads a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lperrors.Configuration("open registry file", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a registry. Every leaf must be a 0x-prefixed
// 20-byte address with a valid EIP-55 checksum.
func Load(r io.Reader) (*Registry, error) {
	var raw map[string]fileNetwork
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, lperrors.Configuration("decode registry", err)
	}

	reg := &Registry{networks: make(map[Network]*networkSet, len(raw))}
	for name, fn := range raw {
		network := Network(name)
		if !network.valid() {
			return nil, lperrors.New(lperrors.ErrConfiguration, "load registry", "unsupported network %q", name)
		}
		if fn.ChainID == 0 {
			return nil, lperrors.New(lperrors.ErrConfiguration, "load registry", "%s: chainId is required", name)
		}

		root, err := buildNode(&fn.Contracts, name)
		if err != nil {
			return nil, lperrors.Configuration("load registry", err)
		}
		if root.children == nil {
			return nil, lperrors.New(lperrors.ErrConfiguration, "load registry", "%s: contracts must be a mapping", name)
		}

		for path, addrs := range fn.Retired {
			for i, addr := range addrs {
				if _, err := ethereum.ParseAddress(addr); err != nil {
					return nil, lperrors.New(lperrors.ErrConfiguration, "load registry",
						"%s: retired %s[%d]: %v", name, path, i, err)
				}
			}
		}

		reg.networks[network] = &networkSet{
			chainID: fn.ChainID,
			root:    root,
			retired: fn.Retired,
		}
	}
	return reg, nil
}

func buildNode(n *yaml.Node, path string) (*node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if _, err := ethereum.ParseAddress(n.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &node{address: n.Value}, nil
	case yaml.MappingNode:
		out := &node{children: make(map[string]*node, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, dup := out.children[key]; dup {
				return nil, fmt.Errorf("%s.%s: duplicate key", path, key)
			}
			child, err := buildNode(n.Content[i+1], path+"."+key)
			if err != nil {
				return nil, err
			}
			out.children[key] = child
		}
		return out, nil
	case 0:
		return nil, fmt.Errorf("%s: missing", path)
	default:
		return nil, fmt.Errorf("%s: expected an address or a mapping", path)
	}
}

func (r *Registry) network(op string, network Network) (*networkSet, error) {
	set, ok := r.networks[network]
	if !ok {
		return nil, lperrors.New(lperrors.ErrConfiguration, op, "network %q is not registered", network)
	}
	return set, nil
}

// Lookup returns the literal address registered at path on network.
func (r *Registry) Lookup(network Network, path ...string) (string, error) {
	const op = "registry lookup"

	set, err := r.network(op, network)
	if err != nil {
		return "", err
	}
	if len(path) == 0 {
		return "", lperrors.New(lperrors.ErrConfiguration, op, "empty path")
	}

	cur := set.root
	for _, key := range path {
		next, ok := cur.children[key]
		if !ok {
			return "", lperrors.New(lperrors.ErrConfiguration, op,
				"%s.%s is not registered", network, strings.Join(path, "."))
		}
		cur = next
	}
	if cur.children != nil {
		return "", lperrors.New(lperrors.ErrConfiguration, op,
			"%s.%s is a table, not an address", network, strings.Join(path, "."))
	}
	return cur.address, nil
}

// LookupAddress is Lookup returning a typed address.
func (r *Registry) LookupAddress(network Network, path ...string) (common.Address, error) {
	s, err := r.Lookup(network, path...)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(s), nil
}

// ChainID returns the chain id the network's addresses live on.
func (r *Registry) ChainID(network Network) (uint64, error) {
	set, err := r.network("registry chain id", network)
	if err != nil {
		return 0, err
	}
	return set.chainID, nil
}

// Entries lists every registered address on network, sorted by path.
func (r *Registry) Entries(network Network) ([]Entry, error) {
	set, err := r.network("registry entries", network)
	if err != nil {
		return nil, err
	}
	var out []Entry
	collect(set.root, "", &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func collect(n *node, prefix string, out *[]Entry) {
	if n.children == nil {
		*out = append(*out, Entry{Path: prefix, Address: n.address})
		return
	}
	for key, child := range n.children {
		p := key
		if prefix != "" {
			p = prefix + "." + key
		}
		collect(child, p, out)
	}
}

// Retired returns the addresses that were registered at path before the
// current one, oldest first. The result is empty when there is no history.
func (r *Registry) Retired(network Network, path ...string) ([]string, error) {
	set, err := r.network("registry retired", network)
	if err != nil {
		return nil, err
	}
	hist := set.retired[strings.Join(path, ".")]
	out := make([]string, len(hist))
	copy(out, hist)
	return out, nil
}
