// Package deploy runs the liquidity pool factory deployment procedure.
package deploy

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ace-smart/liquidity-pool-factory/internal/contracts"
	lpeth "github.com/ace-smart/liquidity-pool-factory/internal/ethereum"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
	"github.com/ace-smart/liquidity-pool-factory/internal/signer"
)

const (
	// gasLimitBufferPercent is added on top of the node's gas estimate.
	gasLimitBufferPercent = 20

	// settleTimeout bounds the final balance read, which runs even after the
	// run context has expired.
	settleTimeout = 30 * time.Second
)

// ConfirmRequest describes the redeploy an operator is asked to approve.
type ConfirmRequest struct {
	Network  registry.Network
	ChainID  *big.Int
	Deployer common.Address
	Balance  *big.Int
	Factory  common.Address
}

// ConfirmFunc approves or declines a redeploy.
type ConfirmFunc func(ctx context.Context, req ConfirmRequest) (bool, error)

// Options configures a run.
type Options struct {
	Network         registry.Network
	DeployerAddress common.Address

	// Redeploy deploys a fresh factory instead of attaching to the registered one.
	Redeploy bool
	// InspectStaking reads the reward window of StakingAddress.
	InspectStaking bool
	StakingAddress common.Address
	// DryRun plans and estimates a redeploy without signing or sending it.
	DryRun bool

	// ChainID overrides the registry's chain id when non-zero.
	ChainID uint64
	// GasLimit skips estimation when non-zero.
	GasLimit uint64
	// GasPrice skips the node suggestion when non-nil.
	GasPrice *big.Int
	// GasBumpPercent is added to a suggested gas price.
	GasBumpPercent uint64

	// Factory is required when Redeploy is set.
	Factory *contracts.PoolFactory
	// Confirm, if set, is asked before a redeploy transaction is built.
	Confirm ConfirmFunc
}

// Deployer runs the procedure against one backend.
type Deployer struct {
	opts     Options
	backend  Backend
	accounts signer.Source
	registry *registry.Registry
	staking  *contracts.Staking
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Deployer. A nil logger uses slog.Default().
func New(opts Options, backend Backend, accounts signer.Source, reg *registry.Registry, logger *slog.Logger) (*Deployer, error) {
	if backend == nil {
		return nil, lperrors.New(lperrors.ErrConfiguration, "new deployer", "backend is required")
	}
	if reg == nil {
		return nil, lperrors.New(lperrors.ErrConfiguration, "new deployer", "registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	staking, err := contracts.NewStaking()
	if err != nil {
		return nil, lperrors.Configuration("new deployer", err)
	}
	return &Deployer{
		opts:     opts,
		backend:  backend,
		accounts: accounts,
		registry: reg,
		staking:  staking,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run executes the procedure. The report is returned even on failure and
// carries whatever was learned before the error.
func (d *Deployer) Run(ctx context.Context) (*Report, error) {
	report := newReport(d.opts, d.now())
	log := d.logger.With(
		slog.String("run_id", report.RunID),
		slog.String("network", d.opts.Network.String()),
	)

	err := d.run(ctx, log, report)
	report.FinishedAt = d.now()
	if err != nil {
		report.Error = err.Error()
		report.ErrorKind = lperrors.KindName(err)
		log.Error("run failed",
			slog.String("kind", report.ErrorKind),
			slog.String("error", err.Error()),
		)
		return report, err
	}

	log.Info("run complete",
		slog.String("factory", report.Factory.Hex()),
		slog.Bool("redeployed", report.Redeployed),
		slog.Duration("duration", report.Duration()),
	)
	return report, nil
}

func (d *Deployer) run(ctx context.Context, log *slog.Logger, report *Report) error {
	acct, err := signer.Select(d.accounts, d.opts.DeployerAddress)
	if err != nil {
		return err
	}
	log.Info("deployer account", slog.String("address", acct.Address().Hex()))

	before, err := d.backend.BalanceAt(ctx, acct.Address(), nil)
	if err != nil {
		return lperrors.Network("read starting balance", err)
	}
	report.BalanceBefore = before
	log.Info("deployer balance",
		slog.String("balance_wei", before.String()),
		slog.String("balance", lpeth.FormatEther(before)),
	)

	stepErr := d.steps(ctx, log, acct, report)

	settleErr := d.settle(ctx, log, acct.Address(), report)
	if stepErr == nil {
		return settleErr
	}
	if settleErr != nil {
		return errors.Join(stepErr, settleErr)
	}
	return stepErr
}

// steps runs everything between the two balance reads.
func (d *Deployer) steps(ctx context.Context, log *slog.Logger, acct signer.Account, report *Report) error {
	factory, err := d.registry.LookupAddress(d.opts.Network, "lpLocker", "factory")
	if err != nil {
		return err
	}
	report.Factory = factory

	chainID, err := d.expectedChainID()
	if err != nil {
		return err
	}
	report.ChainID = chainID.Uint64()

	block, err := d.backend.BlockNumber(ctx)
	if err != nil {
		return lperrors.Network("read block number", err)
	}
	report.Block = block
	log.Info("network",
		slog.Uint64("chain_id", report.ChainID),
		slog.Uint64("block", block),
		slog.String("registered_factory", factory.Hex()),
	)

	if d.opts.Redeploy {
		if err := d.redeploy(ctx, log, acct, chainID, report); err != nil {
			return err
		}
	}
	if !report.Redeployed {
		if err := d.attach(ctx, log, factory); err != nil {
			return err
		}
	}

	if d.opts.InspectStaking {
		if err := d.inspectStaking(ctx, log, report); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) expectedChainID() (*big.Int, error) {
	if d.opts.ChainID != 0 {
		return new(big.Int).SetUint64(d.opts.ChainID), nil
	}
	id, err := d.registry.ChainID(d.opts.Network)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(id), nil
}

// attach checks that the registered factory address holds code.
func (d *Deployer) attach(ctx context.Context, log *slog.Logger, factory common.Address) error {
	code, err := d.backend.CodeAt(ctx, factory, nil)
	if err != nil {
		return lperrors.Network("read factory code", err)
	}
	if len(code) == 0 {
		return lperrors.New(lperrors.ErrConfiguration, "attach factory",
			"no contract code at registry address %s", factory.Hex())
	}
	log.Info("attached to factory",
		slog.String("address", factory.Hex()),
		slog.Int("code_size", len(code)),
	)
	return nil
}

func (d *Deployer) redeploy(ctx context.Context, log *slog.Logger, acct signer.Account, chainID *big.Int, report *Report) error {
	if d.opts.Factory == nil {
		return lperrors.New(lperrors.ErrConfiguration, "redeploy factory", "no factory artifact loaded")
	}

	actual, err := d.backend.ChainID(ctx)
	if err != nil {
		return lperrors.Network("read chain id", err)
	}
	if actual.Cmp(chainID) != 0 {
		return lperrors.New(lperrors.ErrConfiguration, "verify chain id",
			"endpoint reports chain %s but %s expects %s", actual, d.opts.Network, chainID)
	}

	code, err := d.opts.Factory.DeployCode()
	if err != nil {
		return err
	}

	if !d.opts.DryRun && d.opts.Confirm != nil {
		ok, err := d.opts.Confirm(ctx, ConfirmRequest{
			Network:  d.opts.Network,
			ChainID:  chainID,
			Deployer: acct.Address(),
			Balance:  report.BalanceBefore,
			Factory:  report.Factory,
		})
		if err != nil {
			return lperrors.Wrap(lperrors.ErrAborted, "confirm redeploy", err)
		}
		if !ok {
			return lperrors.New(lperrors.ErrAborted, "confirm redeploy", "operator declined")
		}
	}

	from := acct.Address()
	nonce, err := d.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return lperrors.Network("read nonce", err)
	}
	gasPrice, err := d.gasPrice(ctx)
	if err != nil {
		return err
	}
	gasLimit, err := d.gasLimit(ctx, from, gasPrice, code)
	if err != nil {
		return err
	}

	report.GasLimit = gasLimit
	report.GasPrice = gasPrice
	report.EstimatedCost = new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	predicted := crypto.CreateAddress(from, nonce)

	log.Info("deploy plan",
		slog.String("contract", d.opts.Factory.Name()),
		slog.Uint64("nonce", nonce),
		slog.Uint64("gas_limit", gasLimit),
		slog.String("gas_price", gasPrice.String()),
		slog.String("max_cost", lpeth.FormatEther(report.EstimatedCost)),
		slog.String("predicted_address", predicted.Hex()),
	)

	if d.opts.DryRun {
		log.Info("dry run: transaction not sent")
		return nil
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		Value:    big.NewInt(0),
		Data:     code,
	})

	signedTx, err := acct.SignTx(ctx, tx, chainID)
	if err != nil {
		return lperrors.Deployment("sign deploy tx", err)
	}
	if err := d.backend.SendTransaction(ctx, signedTx); err != nil {
		return lperrors.Deployment("send deploy tx", err)
	}
	txHash := signedTx.Hash()
	report.TxHash = &txHash
	log.Info("deploy tx sent", slog.String("tx_hash", txHash.Hex()))

	receipt, err := bind.WaitMined(ctx, d.backend, signedTx)
	if err != nil {
		return lperrors.Deployment("wait for deploy receipt", err)
	}
	report.GasUsed = receipt.GasUsed

	if receipt.Status != types.ReceiptStatusSuccessful {
		return lperrors.New(lperrors.ErrDeployment, "deploy factory",
			"transaction %s reverted in block %s", txHash.Hex(), receipt.BlockNumber)
	}

	addr := receipt.ContractAddress
	if addr == (common.Address{}) {
		addr = predicted
	}
	deployed, err := d.backend.CodeAt(ctx, addr, nil)
	if err != nil {
		return lperrors.Deployment("verify deployed code", err)
	}
	if len(deployed) == 0 {
		return lperrors.New(lperrors.ErrDeployment, "verify deployed code",
			"no code at %s after deployment", addr.Hex())
	}

	report.Factory = addr
	report.Redeployed = true
	log.Info("factory deployed",
		slog.String("address", addr.Hex()),
		slog.Uint64("gas_used", receipt.GasUsed),
		slog.String("block", receipt.BlockNumber.String()),
	)
	return nil
}

// gasPrice returns the override or the node's suggestion plus the bump.
func (d *Deployer) gasPrice(ctx context.Context) (*big.Int, error) {
	if d.opts.GasPrice != nil {
		return new(big.Int).Set(d.opts.GasPrice), nil
	}
	suggested, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, lperrors.Network("suggest gas price", err)
	}
	if d.opts.GasBumpPercent == 0 {
		return suggested, nil
	}
	bumped := new(big.Int).Mul(suggested, new(big.Int).SetUint64(100+d.opts.GasBumpPercent))
	return bumped.Div(bumped, big.NewInt(100)), nil
}

// gasLimit returns the override or the estimate plus the buffer.
func (d *Deployer) gasLimit(ctx context.Context, from common.Address, gasPrice *big.Int, code []byte) (uint64, error) {
	if d.opts.GasLimit != 0 {
		return d.opts.GasLimit, nil
	}
	estimate, err := d.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		GasPrice: gasPrice,
		Value:    big.NewInt(0),
		Data:     code,
	})
	if err != nil {
		return 0, lperrors.Deployment("estimate deploy gas", err)
	}
	return estimate + estimate*gasLimitBufferPercent/100, nil
}

func (d *Deployer) inspectStaking(ctx context.Context, log *slog.Logger, report *Report) error {
	if d.opts.StakingAddress == (common.Address{}) {
		return lperrors.New(lperrors.ErrConfiguration, "inspect staking", "no staking address configured")
	}
	times, err := d.staking.Times(ctx, d.backend, d.opts.StakingAddress)
	if err != nil {
		return lperrors.Network("inspect staking", err)
	}
	report.Staking = times
	log.Info("staking window",
		slog.String("address", d.opts.StakingAddress.Hex()),
		slog.String("start_time", times.Start.String()),
		slog.String("end_time", times.End.String()),
	)
	return nil
}

// settle reads the final balance and records the cost of the run.
func (d *Deployer) settle(ctx context.Context, log *slog.Logger, addr common.Address, report *Report) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	after, err := d.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return lperrors.Network("read final balance", err)
	}
	report.BalanceAfter = after

	cost := new(big.Int).Sub(report.BalanceBefore, after)
	if cost.Sign() < 0 {
		log.Warn("balance grew during the run, reporting zero cost",
			slog.String("increase_wei", new(big.Int).Neg(cost).String()),
		)
		cost.SetInt64(0)
	}
	report.Cost = cost
	log.Info("deployment cost",
		slog.String("cost_wei", cost.String()),
		slog.String("cost", lpeth.FormatEther(cost)),
	)
	return nil
}
