package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Query the per-network contract address registry",
	Long: `Read addresses from the contract registry. Paths may be given as
separate words or dotted, so "lpLocker factory" and "lpLocker.factory"
are the same.

Examples:
  lpdeploy registry get mainnet lpLocker.factory
  lpdeploy registry get testnet unirouter
  lpdeploy registry list testnet
  lpdeploy registry retired testnet lpLocker.factory`,
}

var registryGetCmd = &cobra.Command{
	Use:   "get <network> <path...>",
	Short: "Print the address registered at a path",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRegistryGet,
}

var registryListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List every registered address",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegistryList,
}

var registryRetiredCmd = &cobra.Command{
	Use:   "retired <network> <path...>",
	Short: "List addresses previously registered at a path, oldest first",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRegistryRetired,
}

func init() {
	registryCmd.AddCommand(registryGetCmd)
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryRetiredCmd)

	rootCmd.AddCommand(registryCmd)
}

// splitPath accepts both "a b" and "a.b" forms.
func splitPath(args []string) []string {
	var path []string
	for _, a := range args {
		for _, p := range strings.Split(a, ".") {
			if p != "" {
				path = append(path, p)
			}
		}
	}
	return path
}

func runRegistryGet(cmd *cobra.Command, args []string) error {
	network, err := registry.ParseNetwork(args[0])
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	path := splitPath(args[1:])
	addr, err := reg.Lookup(network, path...)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), registry.Entry{Path: strings.Join(path, "."), Address: addr})
	}
	fmt.Fprintln(cmd.OutOrStdout(), addr)
	return nil
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	networks := registry.Networks()
	if len(args) == 1 {
		network, err := registry.ParseNetwork(args[0])
		if err != nil {
			return err
		}
		networks = []registry.Network{network}
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	all := make(map[registry.Network][]registry.Entry, len(networks))
	for _, n := range networks {
		entries, err := reg.Entries(n)
		if err != nil {
			// An override file may cover a single network.
			if len(args) == 0 {
				continue
			}
			return err
		}
		all[n] = entries
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), all)
	}

	w := newTable(cmd.OutOrStdout())
	printTableHeader(w, "NETWORK", "CHAIN", "PATH", "ADDRESS")
	for _, n := range networks {
		if _, ok := all[n]; !ok {
			continue
		}
		chainID, err := reg.ChainID(n)
		if err != nil {
			return err
		}
		for _, e := range all[n] {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", n, chainID, e.Path, e.Address)
		}
	}
	return w.Flush()
}

func runRegistryRetired(cmd *cobra.Command, args []string) error {
	network, err := registry.ParseNetwork(args[0])
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	path := splitPath(args[1:])
	retired, err := reg.Retired(network, path...)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"network": network,
			"path":    strings.Join(path, "."),
			"retired": retired,
		})
	}
	if len(retired) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No retired addresses")
		return nil
	}
	for _, addr := range retired {
		fmt.Fprintln(cmd.OutOrStdout(), addr)
	}
	return nil
}
