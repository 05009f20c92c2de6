package cryptotax

import "sort"

// ReconcileStatus is the outcome of one asset's balance check.
type ReconcileStatus string

const (
	ReconcileOK       ReconcileStatus = "ok"
	ReconcileMismatch ReconcileStatus = "mismatch"
)

// ReconciliationReport compares the computed end-of-period holdings of one
// asset with the balance the user expects, typically read from exchange
// statements.
type ReconciliationReport struct {
	Asset    string
	Expected Quantity
	Computed Quantity
	Delta    Quantity // expected minus computed
	Status   ReconcileStatus
}

// MarshalJSON implements the json.Marshaler interface for ReconciliationReport.
func (r ReconciliationReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("asset", r.Asset)
	w.Append("expected", r.Expected)
	w.Append("computed", r.Computed)
	w.Append("delta", r.Delta)
	w.Append("status", r.Status)
	return w.MarshalJSON()
}

// Reconcile checks every asset appearing in either the inventory or the
// expected balances, in sorted asset order. A delta within tolerance is ok;
// anything beyond is reported and flagged, never fatal: mismatches are
// findings for the user, not reasons to abort.
func Reconcile(inv *Inventory, expected map[string]Quantity, tolerance Quantity) ([]ReconciliationReport, []Flag) {
	assets := make(map[string]bool)
	for _, a := range inv.Assets() {
		assets[a] = true
	}
	for a := range expected {
		assets[a] = true
	}
	names := make([]string, 0, len(assets))
	for a := range assets {
		names = append(names, a)
	}
	sort.Strings(names)

	var reports []ReconciliationReport
	var flags []Flag
	for _, asset := range names {
		r := ReconciliationReport{
			Asset:    asset,
			Expected: expected[asset],
			Computed: inv.Queue(asset).TotalQuantity(),
		}
		r.Delta = r.Expected.Sub(r.Computed)
		if r.Delta.Abs().GreaterThan(tolerance) {
			r.Status = ReconcileMismatch
			flags = append(flags, Flag{
				Kind:   FlagReconciliationMismatch,
				Asset:  asset,
				Detail: "computed " + r.Computed.String() + ", expected " + r.Expected.String(),
			})
		} else {
			r.Status = ReconcileOK
		}
		reports = append(reports, r)
	}
	return reports, flags
}
