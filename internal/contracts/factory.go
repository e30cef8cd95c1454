package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// PoolFactoryName is the contract name in the compiled artifact.
const PoolFactoryName = "LiquidityPoolFactory"

// PoolFactory builds creation code for the liquidity pool factory.
type PoolFactory struct {
	name     string
	abi      abi.ABI
	bytecode []byte
}

// NewPoolFactory prepares a factory from its artifact.
func NewPoolFactory(a *Artifact) (*PoolFactory, error) {
	parsed, err := a.ParsedABI()
	if err != nil {
		return nil, err
	}
	code, err := a.Bytecode.Bytes()
	if err != nil {
		return nil, lperrors.Configuration("decode factory bytecode", err)
	}
	name := a.ContractName
	if name == "" {
		name = PoolFactoryName
	}
	return &PoolFactory{name: name, abi: parsed, bytecode: code}, nil
}

// Name returns the contract name.
func (f *PoolFactory) Name() string {
	return f.name
}

// DeployCode returns the creation bytecode followed by the packed constructor
// arguments.
func (f *PoolFactory) DeployCode(args ...any) ([]byte, error) {
	if len(f.bytecode) == 0 {
		return nil, lperrors.New(lperrors.ErrConfiguration, "build deploy code",
			"%s artifact has no bytecode (abstract contract or interface?)", f.name)
	}
	packed, err := f.abi.Pack("", args...)
	if err != nil {
		return nil, lperrors.Configuration("pack constructor args", err)
	}
	code := make([]byte, 0, len(f.bytecode)+len(packed))
	code = append(code, f.bytecode...)
	return append(code, packed...), nil
}
