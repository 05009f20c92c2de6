package cryptotax

import "strings"

// stablecoins whose units are taken at face value when pricing fees. Anything
// else goes through the FMV source.
var usdStablecoins = map[string]bool{
	"USD":  true,
	"USDT": true,
	"USDC": true,
	"BUSD": true,
	"DAI":  true,
}

// IsUSDStablecoin reports whether the currency is treated as one USD per unit.
func IsUSDStablecoin(currency string) bool {
	return usdStablecoins[strings.ToUpper(currency)]
}

// FeeUSD prices a transaction's fee in USD.
//
// Fees in USD or a USD stablecoin pass through at face value. Other
// currencies are priced through the FMV source at the transaction date; when
// no price is known the fee is unpriced (priced is false) and the caller
// flags the record instead of guessing.
//
// The priced fee is folded into the tax result by the caller: added to basis
// on an acquisition, subtracted from proceeds on a disposal.
func FeeUSD(tx Transaction, fmv FMVSource) (fee Money, priced bool) {
	if tx.FeeAmount.IsZero() || tx.FeeCurrency == "" {
		return USD(0), true
	}
	if IsUSDStablecoin(tx.FeeCurrency) {
		return M(1, "USD").Mul(tx.FeeAmount), true
	}
	unit, ok := fmv.PriceUSD(tx.FeeCurrency, tx.Date)
	if !ok {
		return USD(0), false
	}
	return unit.Mul(tx.FeeAmount), true
}
