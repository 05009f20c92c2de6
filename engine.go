package cryptotax

// Engine runs one tax period: it seeds the inventory from the prior period's
// snapshot, folds classified transactions into gains, income and lots, and
// closes the period with a reconciliation and a rollover snapshot.
//
// The engine degrades gracefully: bad rows, missing prices and inventory
// shortfalls become flags on the result, never a failed run. Only structural
// input errors (unreadable files, malformed snapshots) abort before the
// engine is even fed.
type Engine struct {
	// Tolerance is the largest absolute holdings delta still considered
	// reconciled. Zero means exact.
	Tolerance Quantity

	fmv    FMVSource
	inv    *Inventory
	gains  []GainRecord
	income []IncomeRecord
	flags  []Flag
	seen   int
}

// NewEngine creates an engine pricing through fmv. A nil fmv means no prices
// are known; affected records are flagged.
func NewEngine(fmv FMVSource) *Engine {
	if fmv == nil {
		fmv = NoPrices{}
	}
	return &Engine{fmv: fmv, inv: NewInventory()}
}

// Seed loads the prior period's holdings into the inventory. Each seeded lot
// keeps its original acquisition date and basis, so holding periods span
// period boundaries. Negative quantities are flagged and skipped.
func (e *Engine) Seed(snap *Snapshot) {
	if snap == nil {
		return
	}
	for _, lot := range snap.Lots {
		if lot.Quantity.IsNegative() {
			e.flags = append(e.flags, Flag{
				Kind:   FlagValidationError,
				Asset:  lot.Asset,
				Date:   lot.Date,
				Detail: "seeded lot has negative quantity " + lot.Quantity.String(),
			})
			continue
		}
		if lot.Quantity.IsZero() {
			continue
		}
		e.inv.Queue(lot.Asset).Push(lot.Date, lot.Quantity, lot.Cost, LotSeeded, lot.TxID)
	}
}

// VerifySeed reconciles the freshly seeded inventory against an independently
// supplied holdings total, typically shipped alongside the seed snapshot. A
// mismatch flags the asset for review; processing continues on the seeded
// data as-is.
func (e *Engine) VerifySeed(expected map[string]Quantity) []ReconciliationReport {
	reports, flags := Reconcile(e.inv, expected, e.Tolerance)
	e.flags = append(e.flags, flags...)
	return reports
}

// Process folds one transaction into the running period.
func (e *Engine) Process(tx Transaction) {
	e.seen++

	if err := tx.Validate(); err != nil {
		e.flags = append(e.flags, flagf(FlagValidationError, tx, "", "%s", err))
		return
	}

	c := Classify(tx)
	if c.Category == Ambiguous {
		e.flags = append(e.flags, flagf(FlagAmbiguous, tx, "", "%s", c.Note))
		return
	}

	fee, priced := FeeUSD(tx, e.fmv)
	if !priced {
		e.flags = append(e.flags, flagf(FlagFeeUnpriced, tx, tx.FeeCurrency,
			"no price for fee of %s %s, fee left out", tx.FeeAmount, tx.FeeCurrency))
		fee = USD(0)
	}

	// On a trade both legs share the row's fee; the disposal side absorbs it
	// as reduced proceeds. A fee only adds to basis on a pure acquisition.
	acquisitionFee := fee
	if c.Disposal != nil {
		acquisitionFee = USD(0)
	}

	if c.Disposal != nil {
		records, flags := MatchDisposal(tx, *c.Disposal, fee, e.inv, e.fmv)
		e.gains = append(e.gains, records...)
		e.flags = append(e.flags, flags...)
	}
	if c.Acquisition != nil {
		e.acquire(tx, *c.Acquisition, acquisitionFee)
	}
	if c.Income != nil {
		record, flags := RecognizeIncome(tx, *c.Income, e.inv, e.fmv)
		e.income = append(e.income, record)
		e.flags = append(e.flags, flags...)
	}
}

// acquire values the bought units and pushes the matching lot. The basis
// comes from the row's USD equivalent, falling back to FMV, falling back to
// zero with a flag, plus any fee not already absorbed by a disposal leg.
func (e *Engine) acquire(tx Transaction, leg AcquisitionLeg, fee Money) {
	basis := USD(0)
	if usd, ok := tx.USD(); ok {
		basis = usd
	} else if unit, ok := e.fmv.PriceUSD(leg.Asset, tx.Date); ok {
		basis = unit.Mul(leg.Quantity)
	} else {
		e.flags = append(e.flags, flagf(FlagMissingFMV, tx, leg.Asset,
			"no USD equivalent and no price for %s on %s, basis taken as zero", leg.Asset, tx.Date))
	}
	e.inv.Queue(leg.Asset).Push(tx.Date, leg.Quantity, basis.Add(fee), LotAcquired, tx.ID())
}

// ProcessAll sorts the transactions chronologically (stable on input order)
// and folds them all in.
func (e *Engine) ProcessAll(txs []Transaction) {
	SortTransactions(txs)
	for _, tx := range txs {
		e.Process(tx)
	}
}

// Inventory exposes the engine's inventory for inspection between calls.
func (e *Engine) Inventory() *Inventory { return e.inv }

// Result is the complete outcome of one period.
type Result struct {
	Gains           []GainRecord
	Income          []IncomeRecord
	Reconciliations []ReconciliationReport
	Flags           []Flag
	Snapshot        *Snapshot
	Summary         Summary
}

// Summary aggregates the period's records into the headline figures.
type Summary struct {
	ShortTermGain  Money
	LongTermGain   Money
	TotalProceeds  Money
	TotalBasis     Money
	OrdinaryIncome Money
	Transactions   int
	Disposals      int
	IncomeEvents   int
}

// NetGain returns the combined short and long term gain.
func (s Summary) NetGain() Money { return s.ShortTermGain.Add(s.LongTermGain) }

// Close ends the period: it reconciles computed holdings against the expected
// balances (nil skips reconciliation), snapshots the remaining lots for the
// next period, and returns the accumulated result.
func (e *Engine) Close(on Date, expected map[string]Quantity) *Result {
	r := &Result{
		Gains:    e.gains,
		Income:   e.income,
		Flags:    e.flags,
		Snapshot: TakeSnapshot(e.inv, on),
	}

	if expected != nil {
		reports, flags := Reconcile(e.inv, expected, e.Tolerance)
		r.Reconciliations = reports
		r.Flags = append(r.Flags, flags...)
	}

	s := Summary{
		ShortTermGain:  USD(0),
		LongTermGain:   USD(0),
		TotalProceeds:  USD(0),
		TotalBasis:     USD(0),
		OrdinaryIncome: USD(0),
		Transactions:   e.seen,
		IncomeEvents:   len(e.income),
	}
	disposals := make(map[string]bool)
	for _, g := range e.gains {
		s.TotalProceeds = s.TotalProceeds.Add(g.Proceeds)
		s.TotalBasis = s.TotalBasis.Add(g.Basis)
		if g.Term == LongTerm {
			s.LongTermGain = s.LongTermGain.Add(g.Gain)
		} else {
			s.ShortTermGain = s.ShortTermGain.Add(g.Gain)
		}
		disposals[g.TxID] = true
	}
	s.Disposals = len(disposals)
	for _, in := range e.income {
		s.OrdinaryIncome = s.OrdinaryIncome.Add(in.FMV)
	}
	r.Summary = s

	return r
}
