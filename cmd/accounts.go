package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ace-smart/liquidity-pool-factory/internal/deploy"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
	"github.com/ace-smart/liquidity-pool-factory/internal/signer"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the configured signing accounts",
	Long: `List the accounts available from LPDEPLOY_PRIVATE_KEYS and the keystore.
The configured deployer is marked with '*'.

Examples:
  lpdeploy accounts
  lpdeploy accounts --balances --network mainnet`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

func init() {
	accountsCmd.Flags().Bool("balances", false, "fetch each account's balance from the network")

	rootCmd.AddCommand(accountsCmd)
}

type accountInfo struct {
	Address  common.Address `json:"address"`
	Deployer bool           `json:"deployer"`
	Balance  *big.Int       `json:"balance,omitempty"`
}

func runAccounts(cmd *cobra.Command, args []string) error {
	balances, _ := cmd.Flags().GetBool("balances")

	src, err := loadAccounts()
	if err != nil {
		return err
	}
	deployer, err := parseAddress("parse deployer address", cfg.Deployer.Address)
	if err != nil {
		return err
	}

	addrs := signer.Addresses(src)
	infos := make([]accountInfo, 0, len(addrs))
	for _, a := range addrs {
		infos = append(infos, accountInfo{Address: a, Deployer: a == deployer})
	}

	if balances && len(infos) > 0 {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Deploy.Timeout)
		defer cancel()

		backend, err := deploy.NewDialer().Dial(ctx, cfg.RPCURL())
		if err != nil {
			return err
		}
		defer backend.Close()

		for i := range infos {
			bal, err := backend.BalanceAt(ctx, infos[i].Address, nil)
			if err != nil {
				return lperrors.Network("read balance", err)
			}
			infos[i].Balance = bal
			logger.Debug("balance", slog.String("address", infos[i].Address.Hex()), slog.String("wei", bal.String()))
		}
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"accounts": infos,
			"count":    len(infos),
		})
	}

	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts configured (set LPDEPLOY_PRIVATE_KEYS or LPDEPLOY_KEYSTORE_DIR)")
		return nil
	}

	w := newTable(cmd.OutOrStdout())
	if balances {
		printTableHeader(w, "", "ADDRESS", "BALANCE")
	} else {
		printTableHeader(w, "", "ADDRESS")
	}
	for _, info := range infos {
		mark := ""
		if info.Deployer {
			mark = colorGreen("*")
		}
		if balances {
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark, info.Address.Hex(), formatBNB(info.Balance))
		} else {
			fmt.Fprintf(w, "%s\t%s\n", mark, info.Address.Hex())
		}
	}
	return w.Flush()
}
