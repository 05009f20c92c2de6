package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// TaxReportMarkdown renders a closed period's full tax report: headline
// summary, per-record gains split by term, income events, and the period's
// flags.
func TaxReportMarkdown(r *cryptotax.Result, year int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tax Report %d\n\n", year)

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Short term gain | %s |\n", r.Summary.ShortTermGain.SignedString())
	fmt.Fprintf(&b, "| Long term gain | %s |\n", r.Summary.LongTermGain.SignedString())
	fmt.Fprintf(&b, "| **Net capital gain** | **%s** |\n", r.Summary.NetGain().SignedString())
	fmt.Fprintf(&b, "| Ordinary income | %s |\n", r.Summary.OrdinaryIncome.String())
	fmt.Fprintf(&b, "| Total proceeds | %s |\n", r.Summary.TotalProceeds.String())
	fmt.Fprintf(&b, "| Total basis | %s |\n", r.Summary.TotalBasis.String())
	fmt.Fprintln(&b)

	for _, term := range []cryptotax.Term{cryptotax.ShortTerm, cryptotax.LongTerm} {
		records := gainsByTerm(r.Gains, term)
		if len(records) == 0 {
			continue
		}
		title := "Short"
		if term == cryptotax.LongTerm {
			title = "Long"
		}
		fmt.Fprintf(&b, "## %s Term Gains\n\n", title)
		fmt.Fprintln(&b, "| Asset | Quantity | Acquired | Disposed | Proceeds | Basis | Gain |")
		fmt.Fprintln(&b, "|:---|---:|:---|:---|---:|---:|---:|")
		total := cryptotax.USD(0)
		for _, g := range records {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				g.Asset, g.Quantity, g.AcquisitionDate, g.DisposalDate,
				g.Proceeds, g.Basis, g.Gain.SignedString())
			total = total.Add(g.Gain)
		}
		fmt.Fprintf(&b, "| **Total** | | | | | | **%s** |\n\n", total.SignedString())
	}

	if len(r.Income) > 0 {
		fmt.Fprint(&b, "## Ordinary Income\n\n")
		fmt.Fprintln(&b, "| Asset | Date | Category | Quantity | Value |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|")
		for _, in := range r.Income {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				in.Asset, in.Date, in.Category, in.Quantity, in.FMV)
		}
		fmt.Fprintln(&b)
	}

	b.WriteString(FlagsMarkdown(r.Flags))

	return b.String()
}

func gainsByTerm(gains []cryptotax.GainRecord, term cryptotax.Term) []cryptotax.GainRecord {
	var out []cryptotax.GainRecord
	for _, g := range gains {
		if g.Term == term {
			out = append(out, g)
		}
	}
	return out
}

// FlagsMarkdown renders the run's degradations, if any, grouped as a single
// review table.
func FlagsMarkdown(flags []cryptotax.Flag) string {
	if len(flags) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprint(&b, "## Review Needed\n\n")
	fmt.Fprintln(&b, "| Kind | Transaction | Asset | Detail |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|")
	for _, f := range flags {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.Kind, f.TxID, f.Asset, f.Detail)
	}
	fmt.Fprintln(&b)
	return b.String()
}

// SnapshotMarkdown renders the end-of-period holdings, one row per surviving
// lot, with a per-asset subtotal.
func SnapshotMarkdown(s *cryptotax.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Holdings as of %s\n\n", s.AsOf)
	fmt.Fprintln(&b, "| Asset | Acquired | Quantity | Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|")
	for _, lot := range s.Lots {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", lot.Asset, lot.Date, lot.Quantity, lot.Cost)
	}
	fmt.Fprintln(&b)

	return b.String()
}

// QueuesMarkdown renders the per-asset queue summaries.
func QueuesMarkdown(summaries []cryptotax.QueueSummary) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Lot Queues\n\n")
	fmt.Fprintln(&b, "| Asset | Lots | Quantity | Basis | Avg Unit Basis |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			s.Asset, s.Lots, s.Quantity, s.Cost, s.AverageUnitCost)
	}
	fmt.Fprintln(&b)

	return b.String()
}

// ReconciliationMarkdown renders the balance check outcome per asset.
func ReconciliationMarkdown(reports []cryptotax.ReconciliationReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Reconciliation\n\n")
	fmt.Fprintln(&b, "| Asset | Expected | Computed | Delta | Status |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|")
	for _, r := range reports {
		status := string(r.Status)
		if r.Status == cryptotax.ReconcileMismatch {
			status = "**" + status + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			r.Asset, r.Expected, r.Computed, r.Delta, status)
	}
	fmt.Fprintln(&b)

	return b.String()
}
