package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	lpeth "github.com/ace-smart/liquidity-pool-factory/internal/ethereum"
	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

var (
	colorGreen  = color.New(color.FgGreen).SprintFunc()
	colorYellow = color.New(color.FgYellow).SprintFunc()
	colorRed    = color.New(color.FgRed).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

// nativeSymbol is the gas currency on both supported networks.
const nativeSymbol = "BNB"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(w io.Writer, err error) {
	if jsonOut {
		_ = printJSON(w, map[string]string{
			"error": err.Error(),
			"kind":  lperrors.KindName(err),
		})
		return
	}
	fmt.Fprintf(w, "%s %v\n", colorRed("✗"), err)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, colorBold(c))
	}
	fmt.Fprintln(w)
}

// printField writes one aligned "Label: value" line.
func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %-16s %v\n", colorBold(label+":"), value)
}

func formatBNB(wei *big.Int) string {
	if wei == nil {
		return "-"
	}
	return lpeth.FormatEther(wei) + " " + nativeSymbol
}

func formatUnix(ts *big.Int) string {
	if ts == nil {
		return "-"
	}
	if !ts.IsInt64() {
		return ts.String()
	}
	return fmt.Sprintf("%s (%s)", ts, time.Unix(ts.Int64(), 0).UTC().Format(time.RFC3339))
}
