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

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct {
	year int
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate and classify the transaction export" }
func (*checkCmd) Usage() string {
	return `ctc check [-y <year>]

  Reads the transaction export without computing anything, and lists every
  row that would be skipped or needs manual review: bad values, ambiguous
  types, unproven losses.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year, 0 checks all years")
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return subcommands.ExitFailure
	}
	year := c.year
	if year == 0 {
		year = cfg.Year
	}

	txs, flags, err := DecodeTransactionsFile(cfg, year)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading transactions:", err)
		return subcommands.ExitFailure
	}

	categories := make(map[cryptotax.Category]int)
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			flags = append(flags, cryptotax.Flag{
				Kind:   cryptotax.FlagValidationError,
				TxID:   tx.ID(),
				Date:   tx.Date,
				Detail: err.Error(),
			})
			continue
		}
		classified := cryptotax.Classify(tx)
		categories[classified.Category]++
		if classified.Category == cryptotax.Ambiguous {
			flags = append(flags, cryptotax.Flag{
				Kind:   cryptotax.FlagAmbiguous,
				TxID:   tx.ID(),
				Date:   tx.Date,
				Detail: classified.Note,
			})
		}
	}

	fmt.Printf("%d transactions", len(txs))
	for _, cat := range []cryptotax.Category{cryptotax.Acquisition, cryptotax.Disposal, cryptotax.Income, cryptotax.Transfer, cryptotax.Ambiguous} {
		if n := categories[cat]; n > 0 {
			fmt.Printf(", %d %s", n, cat)
		}
	}
	fmt.Println()

	if len(flags) == 0 {
		fmt.Println("No findings.")
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.FlagsMarkdown(flags))
	return subcommands.ExitFailure
}
