package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ace-smart/liquidity-pool-factory/internal/contracts"
	"github.com/ace-smart/liquidity-pool-factory/internal/deploy"
	lpeth "github.com/ace-smart/liquidity-pool-factory/internal/ethereum"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Attach to or redeploy the LP locker factory",
	Long: `Resolve the deployer account, record its balance, look up the
registered lpLocker.factory for the network and either attach to it or
deploy a fresh LiquidityPoolFactory. The balance difference is reported
as the cost of the run.

A redeploy asks for confirmation unless --yes or --dry-run is given.

Examples:
  lpdeploy deploy --network testnet
  lpdeploy deploy --network testnet --dry-run --json
  lpdeploy deploy --network mainnet --redeploy=false --inspect-staking
  lpdeploy deploy --network mainnet --gas-price 3gwei --yes`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	f := deployCmd.Flags()
	f.Bool("redeploy", true, "deploy a fresh factory instead of attaching to the registered one")
	f.Bool("inspect-staking", false, "read startTime/endTime from the staking contract")
	f.String("staking-address", "", "staking contract to inspect")
	f.Bool("dry-run", false, "plan and estimate the redeploy without sending it")
	f.BoolP("yes", "y", false, "skip confirmation prompt")
	f.String("artifact", "", "compiled LiquidityPoolFactory artifact (Hardhat or Foundry JSON)")
	f.Uint64("gas-limit", 0, "gas limit (default: estimate plus 20%)")
	f.String("gas-price", "", "gas price such as 3gwei (default: node suggestion)")
	f.Uint64("gas-bump", 0, "percent added to the suggested gas price")
	f.Uint64("chain-id", 0, "expected chain id (default: registry value)")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := deployOptions(cmd)
	if err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	accounts, err := loadAccounts()
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

	d, err := deploy.New(opts, backend, accounts, reg, logger)
	if err != nil {
		return err
	}

	report, runErr := d.Run(ctx)
	if report != nil {
		if jsonOut {
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			printReport(cmd.OutOrStdout(), report, runErr == nil)
		}
	}
	return runErr
}

func deployOptions(cmd *cobra.Command) (deploy.Options, error) {
	deployer, err := parseAddress("parse deployer address", cfg.Deployer.Address)
	if err != nil {
		return deploy.Options{}, err
	}

	opts := deploy.Options{
		Network:         cfg.NetworkName(),
		DeployerAddress: deployer,
		Redeploy:        cfg.Deploy.Redeploy,
		InspectStaking:  cfg.Staking.Inspect,
		DryRun:          cfg.Deploy.DryRun,
		ChainID:         cfg.Deploy.ChainID,
		GasLimit:        cfg.Gas.Limit,
		GasBumpPercent:  cfg.Gas.BumpPercent,
	}

	if cfg.Staking.Address != "" {
		opts.StakingAddress, err = parseAddress("parse staking address", cfg.Staking.Address)
		if err != nil {
			return deploy.Options{}, err
		}
	}

	if cfg.Gas.Price != "" {
		price, err := lpeth.ParseValue(cfg.Gas.Price)
		if err != nil {
			return deploy.Options{}, lperrors.Configuration("parse gas price", err)
		}
		opts.GasPrice = price
	}

	if opts.Redeploy {
		artifact, err := contracts.LoadArtifact(cfg.Deploy.ArtifactPath)
		if err != nil {
			return deploy.Options{}, err
		}
		opts.Factory, err = contracts.NewPoolFactory(artifact)
		if err != nil {
			return deploy.Options{}, err
		}
		if !opts.DryRun && !cfg.Deploy.AssumeYes {
			opts.Confirm = promptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
		}
	}
	return opts, nil
}

// promptConfirm asks on w and reads the answer from r. Anything but "yes"
// declines.
func promptConfirm(r io.Reader, w io.Writer) deploy.ConfirmFunc {
	return func(_ context.Context, req deploy.ConfirmRequest) (bool, error) {
		fmt.Fprintf(w, "%s About to deploy a new %s on %s (chain %s).\n",
			colorYellow("⚠"), contracts.PoolFactoryName, req.Network, req.ChainID)
		fmt.Fprintf(w, "Deployer %s holds %s.\n", req.Deployer.Hex(), formatBNB(req.Balance))
		fmt.Fprintf(w, "The registered factory %s will not be replaced in the registry automatically.\n", req.Factory.Hex())
		fmt.Fprint(w, "Type 'yes' to continue: ")

		var response string
		fmt.Fscanln(r, &response)
		if !strings.EqualFold(strings.TrimSpace(response), "yes") {
			fmt.Fprintln(w, "Aborted")
			return false, nil
		}
		return true, nil
	}
}

func printReport(w io.Writer, r *deploy.Report, ok bool) {
	switch {
	case !ok:
		fmt.Fprintf(w, "%s Run failed\n\n", colorRed("✗"))
	case r.Redeployed:
		fmt.Fprintf(w, "%s Factory deployed!\n\n", colorGreen("✓"))
	case r.DryRun && r.EstimatedCost != nil:
		fmt.Fprintf(w, "%s Dry run complete, nothing was sent\n\n", colorGreen("✓"))
	default:
		fmt.Fprintf(w, "%s Attached to registered factory\n\n", colorGreen("✓"))
	}

	printField(w, "Run ID", r.RunID)
	printField(w, "Network", fmt.Sprintf("%s (chain %d)", r.Network, r.ChainID))
	printField(w, "Deployer", r.Deployer.Hex())
	if r.Block != 0 {
		printField(w, "Block", r.Block)
	}
	if r.Factory != (common.Address{}) {
		printField(w, "Factory", r.Factory.Hex())
	}
	if r.TxHash != nil {
		printField(w, "Tx hash", r.TxHash.Hex())
	}
	if r.GasUsed != 0 {
		printField(w, "Gas used", r.GasUsed)
	}
	if r.EstimatedCost != nil {
		printField(w, "Gas limit", r.GasLimit)
		printField(w, "Gas price", r.GasPrice.String()+" wei")
		printField(w, "Max cost", formatBNB(r.EstimatedCost))
	}
	if r.Staking != nil {
		printField(w, "Staking start", formatUnix(r.Staking.Start))
		printField(w, "Staking end", formatUnix(r.Staking.End))
	}
	if r.BalanceBefore != nil {
		printField(w, "Balance before", formatBNB(r.BalanceBefore))
	}
	if r.BalanceAfter != nil {
		printField(w, "Balance after", formatBNB(r.BalanceAfter))
	}
	if r.Cost != nil {
		printField(w, "Cost", formatBNB(r.Cost))
	}
	fmt.Fprintln(w)
}

