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

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	year    int
	byQueue bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "show end-of-year holdings, lot by lot" }
func (*holdingsCmd) Usage() string {
	return `ctc holdings [-y <year>] [-queues]

  Replays the year and shows the surviving lots, or the per-asset queue
  summaries with -queues.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year, 0 uses the configured year")
	f.BoolVar(&c.byQueue, "queues", false, "Summarize per asset instead of listing lots")
}

func (c *holdingsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.byQueue {
		printMarkdown(renderer.QueuesMarkdown(engine.Inventory().Summaries()))
		return subcommands.ExitSuccess
	}
	snapshot := cryptotax.TakeSnapshot(engine.Inventory(), cryptotax.NewDate(year, 12, 31))
	printMarkdown(renderer.SnapshotMarkdown(snapshot))
	return subcommands.ExitSuccess
}
