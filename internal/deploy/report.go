package deploy

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/ace-smart/liquidity-pool-factory/internal/contracts"
	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
)

// Report summarises one run. Wei amounts are exact integers.
type Report struct {
	RunID      string           `json:"runId"`
	Network    registry.Network `json:"network"`
	ChainID    uint64           `json:"chainId"`
	Deployer   common.Address   `json:"deployer"`
	Block      uint64           `json:"block"`
	Factory    common.Address   `json:"factory"`
	Redeployed bool             `json:"redeployed"`
	DryRun     bool             `json:"dryRun"`

	TxHash   *common.Hash `json:"txHash,omitempty"`
	GasLimit uint64       `json:"gasLimit,omitempty"`
	GasPrice *big.Int     `json:"gasPrice,omitempty"`
	GasUsed  uint64       `json:"gasUsed,omitempty"`

	// EstimatedCost is gas limit times gas price, set when a redeploy was planned.
	EstimatedCost *big.Int `json:"estimatedCost,omitempty"`

	BalanceBefore *big.Int `json:"balanceBefore,omitempty"`
	BalanceAfter  *big.Int `json:"balanceAfter,omitempty"`
	Cost          *big.Int `json:"cost,omitempty"`

	Staking *contracts.StakingTimes `json:"staking,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"errorKind,omitempty"`
}

func newReport(opts Options, now time.Time) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Network:   opts.Network,
		Deployer:  opts.DeployerAddress,
		DryRun:    opts.DryRun,
		StartedAt: now,
	}
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
