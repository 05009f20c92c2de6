// Package cmd implements the CLI application to compute crypto tax reports.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"github.com/etnz/cryptotax"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&calcCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&reconcileCmd{}, "reports")

	c.Register(&checkCmd{}, "inputs")

	c.Register(&assistCmd{}, "assistant")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile       = flag.String("config", "ctc.yaml", "Path to the configuration file")
	transactionsFile = flag.String("transactions-file", "", "Path to the transaction export (CSV), defaults to transactions.csv")
	seedFile         = flag.String("seed-file", "", "Path to the prior period snapshot (JSONL), empty starts from nothing")
	quotesFile       = flag.String("quotes-file", "", "Path to a JSON quote document for FMV lookups")
)

// config is the optional file-based counterpart of the global flags. Flags
// win over the file, the file wins over defaults.
type config struct {
	Transactions   string `yaml:"transactions"`
	Seed           string `yaml:"seed"`
	Quotes         string `yaml:"quotes"`
	QuotesTemplate string `yaml:"quotes_template"`
	SeedBalances   string `yaml:"seed_balances"`
	Year           int    `yaml:"year"`
	Tolerance      string `yaml:"tolerance"`
}

// loadConfig reads the configuration file. A missing file is not an error, it
// just means defaults.
func loadConfig() (cfg config, err error) {
	raw, err := os.ReadFile(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", *configFile, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", *configFile, err)
	}
	return cfg, nil
}

// pick returns the flag value unless it is unset, then the config value.
func pick(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

// DecodeTransactionsFile reads the transaction export named by flags or
// config, filtered to the given tax year (0 keeps all years).
func DecodeTransactionsFile(cfg config, year int) ([]cryptotax.Transaction, []cryptotax.Flag, error) {
	name := pick(*transactionsFile, cfg.Transactions)
	if name == "" {
		name = "transactions.csv"
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open transactions %q: %w", name, err)
	}
	defer f.Close()
	return cryptotax.DecodeTransactions(f, year)
}

// DecodeSeedFile reads the prior period snapshot, if one is configured. No
// seed means an empty starting inventory, which is only right for a first
// year, so it is worth a warning.
func DecodeSeedFile(cfg config) (*cryptotax.Snapshot, error) {
	name := pick(*seedFile, cfg.Seed)
	if name == "" {
		log.Println("warning, no seed snapshot: starting from an empty inventory")
		return nil, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("cannot open seed %q: %w", name, err)
	}
	defer f.Close()
	return cryptotax.DecodeSnapshot(f)
}

// NewFMV builds the FMV source named by flags or config. Without a quote
// file, prices are unknown and affected records get flagged.
func NewFMV(cfg config) (cryptotax.FMVSource, error) {
	name := pick(*quotesFile, cfg.Quotes)
	if name == "" {
		return cryptotax.NoPrices{}, nil
	}
	return cryptotax.OpenQuoteFile(name, cfg.QuotesTemplate)
}

// newEngine assembles a seeded engine from the configuration.
func newEngine(cfg config) (*cryptotax.Engine, error) {
	fmv, err := NewFMV(cfg)
	if err != nil {
		return nil, err
	}
	e := cryptotax.NewEngine(fmv)
	if cfg.Tolerance != "" {
		tol, err := cryptotax.ParseQuantity(cfg.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("cannot parse tolerance %q: %w", cfg.Tolerance, err)
		}
		e.Tolerance = tol
	}
	seed, err := DecodeSeedFile(cfg)
	if err != nil {
		return nil, err
	}
	e.Seed(seed)

	// The seed can ship with an independent holdings total; a disagreement is
	// flagged, processing goes on with the seeded lots as-is.
	if seed != nil && cfg.SeedBalances != "" {
		f, err := os.Open(cfg.SeedBalances)
		if err != nil {
			return nil, fmt.Errorf("cannot open seed balances %q: %w", cfg.SeedBalances, err)
		}
		expected, err := cryptotax.DecodeBalances(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		e.VerifySeed(expected)
	}
	return e, nil
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// Raw markdown is still readable.
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
