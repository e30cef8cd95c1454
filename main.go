// Command lpdeploy deploys and inspects the LP locker factory.
package main

import (
	"os"

	"github.com/ace-smart/liquidity-pool-factory/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
