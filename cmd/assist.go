package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
)

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	year  int
	model string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask the AI assistant about the year's tax report" }
func (*assistCmd) Usage() string {
	return `ctc assist [-y <year>] <question>

  Computes the year's report and asks the assistant a question about it,
  for example "why is my short term gain so high?".
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Tax year, 0 uses the configured year")
	f.StringVar(&c.model, "model", "gemini-2.5-flash", "Model to ask")
}

const assistInstruction = `You are an accountant assistant. You are given a crypto tax report
in markdown: capital gains per lot, ordinary income, and rows flagged for review.
Answer the user's question about this report. Be factual and concise, and when a
flagged row affects the answer, say so. You do not give legal or tax advice.`

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to ask.")
		return subcommands.ExitUsageError
	}
	question := strings.Join(f.Args(), " ")

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
	report := renderer.TaxReportMarkdown(engine.Close(cryptotax.NewDate(year, 12, 31), nil), year)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assistInstruction, genai.RoleUser),
	}
	chat, err := client.Chats.Create(ctx, c.model, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting the chat:", err)
		return subcommands.ExitFailure
	}

	resp, err := chat.Send(ctx,
		&genai.Part{Text: "Here is the tax report:\n\n" + report},
		&genai.Part{Text: question},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		fmt.Fprintln(os.Stderr, "No response from the assistant.")
		return subcommands.ExitFailure
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			printMarkdown(part.Text)
		}
	}
	return subcommands.ExitSuccess
}
