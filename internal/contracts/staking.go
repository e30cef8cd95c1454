package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// stakingABI covers the two views read from LiquidityStakingV2.
const stakingABI = `[
	{"inputs":[],"name":"startTime","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"endTime","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// StakingTimes is the reward window of a staking contract, in unix seconds.
type StakingTimes struct {
	Start *big.Int `json:"startTime"`
	End   *big.Int `json:"endTime"`
}

// Staking reads the schedule of a LiquidityStakingV2 contract.
type Staking struct {
	abi abi.ABI
}

// NewStaking parses the embedded ABI.
func NewStaking() (*Staking, error) {
	parsed, err := abi.JSON(strings.NewReader(stakingABI))
	if err != nil {
		return nil, fmt.Errorf("parse staking ABI: %w", err)
	}
	return &Staking{abi: parsed}, nil
}

// Times calls startTime() and endTime() on the contract at addr.
func (s *Staking) Times(ctx context.Context, caller ethereum.ContractCaller, addr common.Address) (*StakingTimes, error) {
	start, err := s.callUint(ctx, caller, addr, "startTime")
	if err != nil {
		return nil, err
	}
	end, err := s.callUint(ctx, caller, addr, "endTime")
	if err != nil {
		return nil, err
	}
	return &StakingTimes{Start: start, End: end}, nil
}

func (s *Staking) callUint(ctx context.Context, caller ethereum.ContractCaller, addr common.Address, method string) (*big.Int, error) {
	callData, err := s.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}

	result, err := caller.CallContract(ctx, ethereum.CallMsg{
		To:   &addr,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("call %s: empty result (no contract at %s?)", method, addr.Hex())
	}

	var out *big.Int
	if err := s.abi.UnpackIntoInterface(&out, method, result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	return out, nil
}
