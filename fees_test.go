package cryptotax

import (
	"testing"
	"time"
)

func TestFeeUSD(t *testing.T) {
	on := NewDate(2024, time.March, 10)
	prices := StaticPrices{"BNB": USD(600)}

	testCases := []struct {
		name       string
		tx         Transaction
		wantFee    Money
		wantPriced bool
	}{
		{
			name:       "no fee",
			tx:         Transaction{Date: on},
			wantFee:    USD(0),
			wantPriced: true,
		},
		{
			name:       "usd fee passes through",
			tx:         Transaction{Date: on, FeeAmount: Q(12.5), FeeCurrency: "USD"},
			wantFee:    USD(12.5),
			wantPriced: true,
		},
		{
			name:       "stablecoin fee passes through at face value",
			tx:         Transaction{Date: on, FeeAmount: Q(3), FeeCurrency: "usdt"},
			wantFee:    USD(3),
			wantPriced: true,
		},
		{
			name: "crypto fee priced through fmv",
			tx:   Transaction{Date: on, FeeAmount: Q(0.01), FeeCurrency: "BNB"},
			// 0.01 BNB * $600
			wantFee:    USD(6),
			wantPriced: true,
		},
		{
			name:       "unpriced crypto fee",
			tx:         Transaction{Date: on, FeeAmount: Q(0.01), FeeCurrency: "XMR"},
			wantFee:    USD(0),
			wantPriced: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, priced := FeeUSD(tc.tx, prices)
			if priced != tc.wantPriced {
				t.Errorf("FeeUSD() priced = %v, want %v", priced, tc.wantPriced)
			}
			if !fee.Equal(tc.wantFee) {
				t.Errorf("FeeUSD() = %s, want %s", fee, tc.wantFee)
			}
		})
	}
}

func TestIsUSDStablecoin(t *testing.T) {
	for _, c := range []string{"USD", "usdt", "USDC", "BUSD", "dai"} {
		if !IsUSDStablecoin(c) {
			t.Errorf("IsUSDStablecoin(%q) = false, want true", c)
		}
	}
	for _, c := range []string{"BTC", "EUR", ""} {
		if IsUSDStablecoin(c) {
			t.Errorf("IsUSDStablecoin(%q) = true, want false", c)
		}
	}
}
