package cryptotax

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	on := NewDate(2024, time.March, 10)

	testCases := []struct {
		name           string
		tx             Transaction
		wantCategory   Category
		wantAcq        bool
		wantDisp       bool
		wantIncome     bool
		wantZeroProc   bool
		wantIncomeKind IncomeCategory
	}{
		{
			name:         "trade has both legs",
			tx:           Transaction{Type: "Trade", Date: on, BuyAmount: Q(1), BuyCurrency: "BTC", SellAmount: Q(15), SellCurrency: "ETH"},
			wantCategory: Disposal,
			wantAcq:      true,
			wantDisp:     true,
		},
		{
			name:         "fiat purchase is a pure acquisition",
			tx:           Transaction{Type: "Trade", Date: on, BuyAmount: Q(1), BuyCurrency: "BTC"},
			wantCategory: Acquisition,
			wantAcq:      true,
		},
		{
			name:         "spend disposes",
			tx:           Transaction{Type: "Spend", Date: on, SellAmount: Q(0.1), SellCurrency: "BTC"},
			wantCategory: Disposal,
			wantDisp:     true,
		},
		{
			name:           "staking is income",
			tx:             Transaction{Type: "Staking", Date: on, BuyAmount: Q(0.2), BuyCurrency: "ETH"},
			wantCategory:   Income,
			wantIncome:     true,
			wantIncomeKind: IncomeStaking,
		},
		{
			name:           "airdrop is income",
			tx:             Transaction{Type: "Airdrop", Date: on, BuyAmount: Q(100), BuyCurrency: "UNI"},
			wantCategory:   Income,
			wantIncome:     true,
			wantIncomeKind: IncomeAirdrop,
		},
		{
			name:           "mining is income",
			tx:             Transaction{Type: "Mining", Date: on, BuyAmount: Q(0.01), BuyCurrency: "BTC"},
			wantCategory:   Income,
			wantIncome:     true,
			wantIncomeKind: IncomeMining,
		},
		{
			name:         "plain deposit is a transfer",
			tx:           Transaction{Type: "Deposit", Date: on, BuyAmount: Q(1), BuyCurrency: "BTC", Comment: "from cold wallet"},
			wantCategory: Transfer,
		},
		{
			name:           "deposit marked as payment is income",
			tx:             Transaction{Type: "Deposit", Date: on, BuyAmount: Q(1), BuyCurrency: "BTC", Comment: "payment for consulting"},
			wantCategory:   Income,
			wantIncome:     true,
			wantIncomeKind: IncomeOther,
		},
		{
			name:         "plain withdrawal is a transfer",
			tx:           Transaction{Type: "Withdrawal", Date: on, SellAmount: Q(1), SellCurrency: "BTC", Comment: "to ledger"},
			wantCategory: Transfer,
		},
		{
			name:         "withdrawal marked as purchase disposes",
			tx:           Transaction{Type: "Withdrawal", Date: on, SellAmount: Q(1), SellCurrency: "BTC", Comment: "purchase of a car"},
			wantCategory: Disposal,
			wantDisp:     true,
		},
		{
			name:         "proven theft is a zero-proceeds disposal",
			tx:           Transaction{Type: "Lost", Date: on, SellAmount: Q(2), SellCurrency: "ETH", Comment: "proven theft, police report 1234"},
			wantCategory: Disposal,
			wantDisp:     true,
			wantZeroProc: true,
		},
		{
			name:         "unproven loss stays ambiguous",
			tx:           Transaction{Type: "Lost", Date: on, SellAmount: Q(2), SellCurrency: "ETH", Comment: "misplaced keys"},
			wantCategory: Ambiguous,
		},
		{
			name:         "borrow is not taxable",
			tx:           Transaction{Type: "Borrow", Date: on, BuyAmount: Q(1000), BuyCurrency: "USDC"},
			wantCategory: Transfer,
		},
		{
			name:           "borrow interest received is income",
			tx:             Transaction{Type: "Borrow", Date: on, BuyAmount: Q(10), BuyCurrency: "USDC", Comment: "interest"},
			wantCategory:   Income,
			wantIncome:     true,
			wantIncomeKind: IncomeOther,
		},
		{
			name:         "repay principal is not taxable",
			tx:           Transaction{Type: "Repay", Date: on, SellAmount: Q(1000), SellCurrency: "USDC"},
			wantCategory: Transfer,
		},
		{
			name:         "repay interest in crypto disposes",
			tx:           Transaction{Type: "Repay", Date: on, SellAmount: Q(0.01), SellCurrency: "BTC", Comment: "interest payment"},
			wantCategory: Disposal,
			wantDisp:     true,
		},
		{
			name:         "income without a buy leg is ambiguous",
			tx:           Transaction{Type: "Staking", Date: on},
			wantCategory: Ambiguous,
		},
		{
			name:         "unknown type is ambiguous",
			tx:           Transaction{Type: "Margin", Date: on, BuyAmount: Q(1), BuyCurrency: "BTC"},
			wantCategory: Ambiguous,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.tx)
			if c.Category != tc.wantCategory {
				t.Errorf("Classify() category = %s, want %s", c.Category, tc.wantCategory)
			}
			if got := c.Acquisition != nil; got != tc.wantAcq {
				t.Errorf("Classify() acquisition leg present = %v, want %v", got, tc.wantAcq)
			}
			if got := c.Disposal != nil; got != tc.wantDisp {
				t.Errorf("Classify() disposal leg present = %v, want %v", got, tc.wantDisp)
			}
			if got := c.Income != nil; got != tc.wantIncome {
				t.Errorf("Classify() income leg present = %v, want %v", got, tc.wantIncome)
			}
			if tc.wantDisp && c.Disposal != nil && c.Disposal.ZeroProceeds != tc.wantZeroProc {
				t.Errorf("Classify() zero proceeds = %v, want %v", c.Disposal.ZeroProceeds, tc.wantZeroProc)
			}
			if tc.wantIncome && c.Income != nil && c.Income.Category != tc.wantIncomeKind {
				t.Errorf("Classify() income category = %s, want %s", c.Income.Category, tc.wantIncomeKind)
			}
			if c.Category == Ambiguous && c.Note == "" {
				t.Errorf("Classify() ambiguous without a note")
			}
		})
	}
}
