package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
)

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	year         int
	balancesFile string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "check computed holdings against exchange balances" }
func (*reconcileCmd) Usage() string {
	return `ctc reconcile -balances <file> [-y <year>]

  Replays the year and compares the computed end-of-year holdings with the
  expected balances, one "asset,quantity" CSV row per asset.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year, 0 uses the configured year")
	f.StringVar(&c.balancesFile, "balances", "", "Expected end-of-year balances (CSV)")
}

func (c *reconcileCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.balancesFile == "" {
		fmt.Fprintln(os.Stderr, "The -balances flag is required")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return subcommands.ExitFailure
	}
	year := c.year
	if year == 0 {
		year = cfg.Year
	}
	if year == 0 {
		fmt.Fprintln(os.Stderr, "No tax year: pass -y or set year in the config")
		return subcommands.ExitUsageError
	}

	engine, err := newEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error preparing the engine:", err)
		return subcommands.ExitFailure
	}
	txs, _, err := DecodeTransactionsFile(cfg, year)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading transactions:", err)
		return subcommands.ExitFailure
	}
	engine.ProcessAll(txs)

	f, err := os.Open(c.balancesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening balances %q: %v\n", c.balancesFile, err)
		return subcommands.ExitFailure
	}
	expected, err := cryptotax.DecodeBalances(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading balances:", err)
		return subcommands.ExitFailure
	}

	result := engine.Close(cryptotax.NewDate(year, 12, 31), expected)
	printMarkdown(renderer.ReconciliationMarkdown(result.Reconciliations))

	for _, r := range result.Reconciliations {
		if r.Status == cryptotax.ReconcileMismatch {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
