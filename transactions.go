package cryptotax

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized row from the ingestion collaborator.
//
// Rows arrive already filtered to the target tax year and chronologically
// sorted; the engine does not re-sort or re-filter. A Transaction is read-only
// once classified.
type Transaction struct {
	Row           int    // original row order, used as the stable tie-break key
	Type          string // raw source label (Trade, Spend, Staking, ...)
	Date          Date
	BuyAmount     Quantity
	BuyCurrency   string
	SellAmount    Quantity
	SellCurrency  string
	FeeAmount     Quantity
	FeeCurrency   string
	Exchange      string
	ExchangeID    string
	USDEquivalent decimal.NullDecimal // nullable: absent when the source had no USD quote
	Comment       string
}

// ID returns a stable identifier for the transaction, preferring the
// exchange-assigned id.
func (t Transaction) ID() string {
	if t.ExchangeID != "" {
		return t.ExchangeID
	}
	return fmt.Sprintf("row-%d", t.Row)
}

// USD returns the row's USD equivalent and whether the source supplied one.
func (t Transaction) USD() (Money, bool) {
	if !t.USDEquivalent.Valid {
		return Money{}, false
	}
	return M(t.USDEquivalent.Decimal, "USD"), true
}

// Validate checks the transaction for structural sanity. A failure here is a
// per-row ValidationError: the row is skipped and flagged, the run continues.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s has no date", t.ID())
	}
	if t.BuyAmount.IsNegative() {
		return fmt.Errorf("transaction %s buy amount must not be negative, got %s", t.ID(), t.BuyAmount)
	}
	if t.SellAmount.IsNegative() {
		return fmt.Errorf("transaction %s sell amount must not be negative, got %s", t.ID(), t.SellAmount)
	}
	if t.FeeAmount.IsNegative() {
		return fmt.Errorf("transaction %s fee amount must not be negative, got %s", t.ID(), t.FeeAmount)
	}
	if t.BuyAmount.IsPositive() && t.BuyCurrency == "" {
		return fmt.Errorf("transaction %s has a buy amount but no buy currency", t.ID())
	}
	if t.SellAmount.IsPositive() && t.SellCurrency == "" {
		return fmt.Errorf("transaction %s has a sell amount but no sell currency", t.ID())
	}
	return nil
}

// SortTransactions orders transactions chronologically, breaking date ties by
// original row order so that results are reproducible from the same input.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date == txs[j].Date {
			return txs[i].Row < txs[j].Row
		}
		return txs[i].Date.Before(txs[j].Date)
	})
}
