package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
)

// calcCmd holds the flags for the 'calc' subcommand.
type calcCmd struct {
	year         int
	balancesFile string
	snapshotOut  string
	asJSON       bool
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "compute the tax report for one year" }
func (*calcCmd) Usage() string {
	return `ctc calc [-y <year>] [-balances <file>] [-o <snapshot>] [-json]

  Computes capital gains, ordinary income and the rollover snapshot for a
  tax year from the transaction export and the prior period snapshot.
`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year to report on, 0 uses the configured year")
	f.StringVar(&c.balancesFile, "balances", "", "Expected end-of-year balances (CSV) to reconcile against")
	f.StringVar(&c.snapshotOut, "o", "", "Write the end-of-year snapshot to this file (JSONL)")
	f.BoolVar(&c.asJSON, "json", false, "Emit the raw result as JSON instead of the report")
}

func (c *calcCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	txs, flags, err := DecodeTransactionsFile(cfg, year)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading transactions:", err)
		return subcommands.ExitFailure
	}
	engine.ProcessAll(txs)

	var expected map[string]cryptotax.Quantity
	if c.balancesFile != "" {
		f, err := os.Open(c.balancesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening balances %q: %v\n", c.balancesFile, err)
			return subcommands.ExitFailure
		}
		expected, err = cryptotax.DecodeBalances(f)
		f.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading balances:", err)
			return subcommands.ExitFailure
		}
	}

	result := engine.Close(cryptotax.NewDate(year, 12, 31), expected)
	result.Flags = append(flags, result.Flags...)

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(os.Stderr, "Error encoding result:", err)
			return subcommands.ExitFailure
		}
	} else {
		md := renderer.TaxReportMarkdown(result, year)
		if expected != nil {
			md += renderer.ReconciliationMarkdown(result.Reconciliations)
		}
		printMarkdown(md)
	}

	if c.snapshotOut != "" {
		f, err := os.Create(c.snapshotOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating snapshot %q: %v\n", c.snapshotOut, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		if err := cryptotax.EncodeSnapshot(f, result.Snapshot); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing snapshot:", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Snapshot written to %s\n", c.snapshotOut)
	}

	return subcommands.ExitSuccess
}
