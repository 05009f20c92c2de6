package cryptotax

import "strings"

// Category is the semantic category assigned to a transaction by the
// classifier, following the IRS-oriented mapping of transaction types.
type Category string

const (
	Acquisition Category = "acquisition"
	Disposal    Category = "disposal"
	Income      Category = "income"
	Transfer    Category = "transfer"
	Ambiguous   Category = "ambiguous"
)

// IncomeCategory qualifies an income event for reporting.
type IncomeCategory string

const (
	IncomeStaking IncomeCategory = "staking"
	IncomeAirdrop IncomeCategory = "airdrop"
	IncomeMining  IncomeCategory = "mining"
	IncomeOther   IncomeCategory = "other"
)

// AcquisitionLeg is the buy side of a classified transaction.
type AcquisitionLeg struct {
	Asset    string
	Quantity Quantity
}

// DisposalLeg is the sell side of a classified transaction.
// ZeroProceeds marks disposals with no consideration (proven theft/loss).
type DisposalLeg struct {
	Asset        string
	Quantity     Quantity
	ZeroProceeds bool
}

// IncomeLeg is the income side of a classified transaction.
type IncomeLeg struct {
	Asset    string
	Quantity Quantity
	Category IncomeCategory
}

// Classified is the closed, category-tagged view of a transaction that the
// rest of the engine operates on. At most one leg of each kind is present; a
// Trade carries both an acquisition and a disposal leg at the same timestamp.
type Classified struct {
	Tx          Transaction
	Category    Category
	Acquisition *AcquisitionLeg
	Disposal    *DisposalLeg
	Income      *IncomeLeg
	Note        string // set when the category is Ambiguous
}

// comment markers used to resolve deposit/withdrawal and loss semantics.
// A deposit of externally-sourced value is income; a withdrawal to a third
// party is a disposal; everything else moves between the user's own wallets.
var (
	externalValueMarkers = []string{"payment", "reward", "external", "income"}
	thirdPartyMarkers    = []string{"payment", "purchase", "spend", "third party", "fiat", "gift sent"}
	theftMarkers         = []string{"proven theft", "theft proven", "theft-proven"}
	interestMarker       = "interest"
)

func commentHas(comment string, markers ...string) bool {
	c := strings.ToLower(comment)
	for _, m := range markers {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}

// Classify maps a normalized transaction to its semantic category and legs.
// It is a pure function and never fails: unrecognized input resolves to
// Ambiguous so the run can continue with the row excluded from totals.
func Classify(tx Transaction) Classified {
	c := Classified{Tx: tx}

	typ := strings.ToLower(strings.TrimSpace(tx.Type))
	switch typ {
	case "trade", "swap":
		// Both effects of the same transaction, at the same timestamp.
		c.Category = Acquisition
		if tx.BuyAmount.IsPositive() && tx.BuyCurrency != "" {
			c.Acquisition = &AcquisitionLeg{Asset: tx.BuyCurrency, Quantity: tx.BuyAmount}
		}
		if tx.SellAmount.IsPositive() && tx.SellCurrency != "" {
			c.Category = Disposal
			c.Disposal = &DisposalLeg{Asset: tx.SellCurrency, Quantity: tx.SellAmount}
		}
		if c.Acquisition == nil && c.Disposal == nil {
			c.Category = Ambiguous
			c.Note = "trade with neither buy nor sell leg"
		}

	case "spend":
		if tx.SellAmount.IsPositive() && tx.SellCurrency != "" {
			c.Category = Disposal
			c.Disposal = &DisposalLeg{Asset: tx.SellCurrency, Quantity: tx.SellAmount}
		} else {
			c.Category = Ambiguous
			c.Note = "spend without a sell leg"
		}

	case "income", "staking", "airdrop", "mining":
		cat := IncomeOther
		switch typ {
		case "staking":
			cat = IncomeStaking
		case "airdrop":
			cat = IncomeAirdrop
		case "mining":
			cat = IncomeMining
		}
		if leg := incomeLeg(tx, cat); leg != nil {
			c.Category = Income
			c.Income = leg
		} else {
			c.Category = Ambiguous
			c.Note = "income without a buy leg"
		}

	case "deposit":
		// A deposit of externally-sourced value (payment, reward) is income;
		// a move between the user's own wallets has no tax effect.
		if commentHas(tx.Comment, externalValueMarkers...) && tx.BuyAmount.IsPositive() && tx.BuyCurrency != "" {
			c.Category = Income
			c.Income = incomeLeg(tx, IncomeOther)
		} else {
			c.Category = Transfer
		}

	case "withdrawal":
		// A withdrawal to a third party or into fiat/goods is a disposal.
		if commentHas(tx.Comment, thirdPartyMarkers...) && tx.SellAmount.IsPositive() && tx.SellCurrency != "" {
			c.Category = Disposal
			c.Disposal = &DisposalLeg{Asset: tx.SellCurrency, Quantity: tx.SellAmount}
		} else {
			c.Category = Transfer
		}

	case "lost":
		// Only a proven theft is a deductible capital loss; anything else
		// needs manual review and is never silently assumed.
		if commentHas(tx.Comment, theftMarkers...) && tx.SellAmount.IsPositive() && tx.SellCurrency != "" {
			c.Category = Disposal
			c.Disposal = &DisposalLeg{Asset: tx.SellCurrency, Quantity: tx.SellAmount, ZeroProceeds: true}
		} else {
			c.Category = Ambiguous
			c.Note = "lost without proven-theft marker, needs manual review"
		}

	case "borrow":
		// Borrowing is not a taxable event; marked interest received is income.
		c.Category = Transfer
		if commentHas(tx.Comment, interestMarker) && tx.BuyAmount.IsPositive() && tx.BuyCurrency != "" {
			c.Category = Income
			c.Income = incomeLeg(tx, IncomeOther)
		}
	case "repay":
		// Repaying principal is not taxable; marked interest paid in crypto
		// disposes of the units used to pay it.
		c.Category = Transfer
		if commentHas(tx.Comment, interestMarker) && tx.SellAmount.IsPositive() && tx.SellCurrency != "" {
			c.Category = Disposal
			c.Disposal = &DisposalLeg{Asset: tx.SellCurrency, Quantity: tx.SellAmount}
		}

	default:
		c.Category = Ambiguous
		c.Note = "unrecognized transaction type " + tx.Type
	}

	return c
}

func incomeLeg(tx Transaction, cat IncomeCategory) *IncomeLeg {
	if !tx.BuyAmount.IsPositive() || tx.BuyCurrency == "" {
		return nil
	}
	return &IncomeLeg{Asset: tx.BuyCurrency, Quantity: tx.BuyAmount, Category: cat}
}
