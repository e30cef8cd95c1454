// Package cmd implements the lpdeploy command line.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ace-smart/liquidity-pool-factory/internal/config"
	lpeth "github.com/ace-smart/liquidity-pool-factory/internal/ethereum"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
	"github.com/ace-smart/liquidity-pool-factory/internal/signer"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "lpdeploy",
	Short: "Deploy and inspect the LP locker factory on BSC",
	Long: `lpdeploy attaches to or redeploys the LiquidityPoolFactory contract
registered for a network, and reports what the run cost the deployer.

Configuration is read from flags, LPDEPLOY_* environment variables, a .env
file and an optional lpdeploy.yaml. NETWORK, URL_MAIN and URL_TEST are read
without a prefix.

Examples:
  lpdeploy deploy --network testnet --dry-run
  lpdeploy deploy --network mainnet --redeploy=false --inspect-staking
  lpdeploy registry get mainnet lpLocker.factory
  lpdeploy accounts --balances`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("network", "", "target network: mainnet or testnet (env NETWORK)")
	pf.String("deployer", "", "deployer address (env LPDEPLOY_DEPLOYER_ADDRESS)")
	pf.String("keystore", "", "go-ethereum keystore directory (env LPDEPLOY_KEYSTORE_DIR)")
	pf.String("registry", "", "address registry YAML file overriding the built-in one")
	pf.Duration("timeout", 0, "overall deadline for RPC work (default 10m)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.BoolVar(&jsonOut, "json", false, "output in JSON format")
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

// setup loads configuration and builds the logger for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c
	logger = newLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.String("config", cfg.String()))
	return nil
}

func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(lc.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadRegistry() (*registry.Registry, error) {
	if cfg.RegistryFile != "" {
		return registry.LoadFile(cfg.RegistryFile)
	}
	return registry.Default()
}

// loadAccounts gathers raw keys first, then keystore accounts.
func loadAccounts() (signer.Source, error) {
	keys, err := signer.NewKeySet(cfg.Deployer.PrivateKeys)
	if err != nil {
		return nil, err
	}
	sources := signer.Multi{keys}
	if cfg.Deployer.KeystoreDir != "" {
		ks, err := signer.NewKeystore(cfg.Deployer.KeystoreDir, cfg.Deployer.KeystorePassword)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ks)
	}
	return sources, nil
}

func parseAddress(op, s string) (common.Address, error) {
	addr, err := lpeth.ParseAddress(s)
	if err != nil {
		return common.Address{}, lperrors.Configuration(op, err)
	}
	return addr, nil
}
