package cryptotax

// IncomeRecord is one reportable ordinary-income event: units received at
// their fair market value on the day of receipt. The same value becomes the
// cost basis of the resulting lot, so a later disposal at an unchanged price
// produces no second gain.
type IncomeRecord struct {
	Asset    string
	TxID     string
	Date     Date
	Category IncomeCategory
	Quantity Quantity
	FMV      Money  // total USD value recognized as income
	LotID    string // lot created in the inventory
}

// MarshalJSON implements the json.Marshaler interface for IncomeRecord.
func (r IncomeRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("asset", r.Asset)
	w.Append("tx", r.TxID)
	w.Append("date", r.Date)
	w.Append("category", r.Category)
	w.Append("quantity", r.Quantity)
	w.Append("fmv", r.FMV)
	w.Optional("lot", r.LotID)
	return w.MarshalJSON()
}

// RecognizeIncome values the received units and pushes the matching lot.
//
// The value comes from the row's USD equivalent when present, otherwise from
// quantity times FMV at the receipt date. With no price at all the income is
// recorded at zero and flagged: the resulting lot then has a zero basis, so
// the untaxed value surfaces as gain on disposal instead of disappearing.
func RecognizeIncome(tx Transaction, leg IncomeLeg, inv *Inventory, fmv FMVSource) (IncomeRecord, []Flag) {
	var flags []Flag

	value := USD(0)
	if usd, ok := tx.USD(); ok {
		value = usd
	} else if unit, ok := fmv.PriceUSD(leg.Asset, tx.Date); ok {
		value = unit.Mul(leg.Quantity)
	} else {
		flags = append(flags, flagf(FlagMissingFMV, tx, leg.Asset,
			"no USD equivalent and no price for %s on %s, income recorded at zero", leg.Asset, tx.Date))
	}

	lot := inv.Queue(leg.Asset).Push(tx.Date, leg.Quantity, value, LotIncome, tx.ID())

	return IncomeRecord{
		Asset:    leg.Asset,
		TxID:     tx.ID(),
		Date:     tx.Date,
		Category: leg.Category,
		Quantity: leg.Quantity,
		FMV:      value,
		LotID:    lot.ID,
	}, flags
}
