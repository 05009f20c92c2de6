package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/etnz/cryptotax"
)

// headings parses rendered markdown and returns its heading texts, so the
// tests assert structure rather than raw bytes.
func headings(t *testing.T, md string) []string {
	t.Helper()

	source := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var out []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var b strings.Builder
			for i := 0; i < h.Lines().Len(); i++ {
				line := h.Lines().At(i)
				b.Write(line.Value(source))
			}
			out = append(out, b.String())
		}
		return ast.WalkContinue, nil
	})
	return out
}

// closedPeriod runs a small period end to end to render from.
func closedPeriod(t *testing.T) *cryptotax.Result {
	t.Helper()

	e := cryptotax.NewEngine(nil)
	e.ProcessAll([]cryptotax.Transaction{
		{Row: 1, Type: "Trade", Date: cryptotax.NewDate(2023, time.January, 1), BuyAmount: cryptotax.Q(1), BuyCurrency: "BTC",
			USDEquivalent: decimal.NewNullDecimal(decimal.NewFromInt(20000))},
		{Row: 2, Type: "Trade", Date: cryptotax.NewDate(2024, time.June, 1), SellAmount: cryptotax.Q(1), SellCurrency: "BTC",
			USDEquivalent: decimal.NewNullDecimal(decimal.NewFromInt(70000))},
		{Row: 3, Type: "Airdrop", Date: cryptotax.NewDate(2024, time.July, 1), BuyAmount: cryptotax.Q(100), BuyCurrency: "UNI"},
	})
	return e.Close(cryptotax.NewDate(2024, time.December, 31), nil)
}

func TestTaxReportMarkdown(t *testing.T) {
	r := closedPeriod(t)
	md := TaxReportMarkdown(r, 2024)

	got := headings(t, md)
	want := []string{"Tax Report 2024", "Summary", "Long Term Gains", "Ordinary Income", "Review Needed"}
	if len(got) != len(want) {
		t.Fatalf("headings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("headings = %v, want %v", got, want)
		}
	}

	// The 2023 lot sold in mid 2024 is a $50,000 long term gain.
	if !strings.Contains(md, "+$50,000.00") {
		t.Errorf("report misses the long term gain:\n%s", md)
	}
	// The unpriced airdrop shows up in the review table.
	if !strings.Contains(md, string(cryptotax.FlagMissingFMV)) {
		t.Errorf("report misses the missing-fmv flag:\n%s", md)
	}
}

func TestSnapshotMarkdown(t *testing.T) {
	s := &cryptotax.Snapshot{
		AsOf: cryptotax.NewDate(2024, time.December, 31),
		Lots: []cryptotax.SnapshotLot{
			{Asset: "BTC", Date: cryptotax.NewDate(2020, time.May, 1), Quantity: cryptotax.Q(1), Cost: cryptotax.USD(9000)},
		},
	}
	md := SnapshotMarkdown(s)

	got := headings(t, md)
	if len(got) != 1 || got[0] != "Holdings as of 2024-12-31" {
		t.Fatalf("headings = %v", got)
	}
	if !strings.Contains(md, "| BTC | 2020-05-01 | 1 |") {
		t.Errorf("snapshot misses the BTC lot:\n%s", md)
	}
}

func TestReconciliationMarkdown(t *testing.T) {
	md := ReconciliationMarkdown([]cryptotax.ReconciliationReport{
		{Asset: "BTC", Expected: cryptotax.Q(1), Computed: cryptotax.Q(1), Status: cryptotax.ReconcileOK},
		{Asset: "ETH", Expected: cryptotax.Q(2), Computed: cryptotax.Q(1.5), Delta: cryptotax.Q(0.5), Status: cryptotax.ReconcileMismatch},
	})

	if !strings.Contains(md, "| BTC | 1 | 1 |") {
		t.Errorf("reconciliation misses the ok row:\n%s", md)
	}
	// Mismatches stand out in bold.
	if !strings.Contains(md, "**mismatch**") {
		t.Errorf("reconciliation misses the bold mismatch:\n%s", md)
	}
}

func TestFlagsMarkdown_EmptyIsSilent(t *testing.T) {
	if got := FlagsMarkdown(nil); got != "" {
		t.Errorf("FlagsMarkdown(nil) = %q, want empty", got)
	}
}
