package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ace-smart/liquidity-pool-factory/internal/contracts"
	"github.com/ace-smart/liquidity-pool-factory/internal/deploy"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

var stakingCmd = &cobra.Command{
	Use:   "staking",
	Short: "Inspect LiquidityStakingV2 contracts",
}

var stakingInspectCmd = &cobra.Command{
	Use:   "inspect [address]",
	Short: "Print a staking contract's reward window",
	Long: `Read startTime() and endTime() from a LiquidityStakingV2 contract.
Without an address the configured staking address is used.

Examples:
  lpdeploy staking inspect --network mainnet
  lpdeploy staking inspect 0x812Db49B5e44A079D128Fb636671b1E5A5422e81 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStakingInspect,
}

func init() {
	stakingCmd.AddCommand(stakingInspectCmd)

	rootCmd.AddCommand(stakingCmd)
}

func runStakingInspect(cmd *cobra.Command, args []string) error {
	target := cfg.Staking.Address
	if len(args) == 1 {
		target = args[0]
	}
	addr, err := parseAddress("parse staking address", target)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	staking, err := contracts.NewStaking()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Deploy.Timeout)
	defer cancel()

	backend, err := deploy.NewDialer().Dial(ctx, cfg.RPCURL())
	if err != nil {
		return err
	}
	defer backend.Close()

	times, err := staking.Times(ctx, backend, addr)
	if err != nil {
		return lperrors.Network("inspect staking", err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"network":   cfg.Network,
			"address":   addr,
			"startTime": times.Start,
			"endTime":   times.End,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Staking contract %s on %s\n\n", colorGreen("✓"), addr.Hex(), cfg.Network)
	printField(cmd.OutOrStdout(), "Start", formatUnix(times.Start))
	printField(cmd.OutOrStdout(), "End", formatUnix(times.End))
	return nil
}
