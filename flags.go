package cryptotax

import "fmt"

// FlagKind names a class of degradation encountered during a run.
type FlagKind string

const (
	// FlagValidationError marks a row that failed structural validation and
	// was excluded from the run.
	FlagValidationError FlagKind = "validation-error"
	// FlagInsufficientLots marks a disposal larger than the queued inventory.
	// Only the matched part produces records; the flag carries the shortfall.
	FlagInsufficientLots FlagKind = "insufficient-lots"
	// FlagMissingFMV marks a record computed without a price: the affected
	// amount was taken as zero.
	FlagMissingFMV FlagKind = "missing-fmv"
	// FlagFeeUnpriced marks a fee that could not be priced in USD and was
	// left out of basis/proceeds.
	FlagFeeUnpriced FlagKind = "fee-unpriced"
	// FlagAmbiguous marks a row the classifier could not resolve; it is
	// excluded from totals and listed for manual review.
	FlagAmbiguous FlagKind = "ambiguous-classification"
	// FlagReconciliationMismatch marks an asset whose computed end-of-period
	// holdings differ from the expected balance.
	FlagReconciliationMismatch FlagKind = "reconciliation-mismatch"
	// FlagDust marks a row skipped because its value is below the reporting
	// threshold.
	FlagDust FlagKind = "dust"
)

// Flag is one diagnosed degradation. The engine accumulates flags and keeps
// going; a run fails only on structural input errors, never on bad rows.
type Flag struct {
	Kind   FlagKind
	TxID   string
	Asset  string
	Date   Date
	Detail string
}

func (f Flag) String() string {
	s := string(f.Kind)
	if f.TxID != "" {
		s += " tx=" + f.TxID
	}
	if f.Asset != "" {
		s += " asset=" + f.Asset
	}
	if !f.Date.IsZero() {
		s += " date=" + f.Date.String()
	}
	if f.Detail != "" {
		s += ": " + f.Detail
	}
	return s
}

// CountByKind tallies flags per kind, for report summaries.
func CountByKind(flags []Flag) map[FlagKind]int {
	counts := make(map[FlagKind]int)
	for _, f := range flags {
		counts[f.Kind]++
	}
	return counts
}

// MarshalJSON implements the json.Marshaler interface for Flag.
func (f Flag) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", f.Kind)
	w.Optional("tx", f.TxID)
	w.Optional("asset", f.Asset)
	if !f.Date.IsZero() {
		w.Append("date", f.Date)
	}
	w.Optional("detail", f.Detail)
	return w.MarshalJSON()
}

func flagf(kind FlagKind, tx Transaction, asset string, format string, args ...any) Flag {
	return Flag{
		Kind:   kind,
		TxID:   tx.ID(),
		Asset:  asset,
		Date:   tx.Date,
		Detail: fmt.Sprintf(format, args...),
	}
}
