package cryptotax

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// csvHeader is the expected column layout of a transaction export.
var csvHeader = []string{
	"Type", "BuyAmount", "BuyCurrency", "SellAmount", "SellCurrency",
	"FeeAmount", "FeeCurrency", "Exchange", "ExchangeId", "Group",
	"Import", "Comment", "Date", "USDEquivalent", "UpdatedAt",
}

// column indexes into a csv record.
const (
	colType = iota
	colBuyAmount
	colBuyCurrency
	colSellAmount
	colSellCurrency
	colFeeAmount
	colFeeCurrency
	colExchange
	colExchangeID
	colGroup
	colImport
	colComment
	colDate
	colUSDEquivalent
	colUpdatedAt
)

// dustThreshold is the USD value under which a row is not worth reporting.
var dustThreshold = decimal.RequireFromString("0.01")

// DecodeTransactions reads a transaction CSV export.
//
// Structural problems (unreadable input, wrong header, ragged rows) fail the
// decode. A row with an unparseable value is flagged and skipped instead:
// one bad row must not take the whole year down.
//
// A non-zero year keeps only that tax year's rows. Rows whose USD value is
// below one cent are flagged as dust and skipped.
func DecodeTransactions(r io.Reader, year int) ([]Transaction, []Flag, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read csv header: %w", err)
	}
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, nil, fmt.Errorf("unexpected csv header: column %d is %q, want %q", i+1, header[i], want)
		}
	}

	var txs []Transaction
	var flags []Flag
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read csv row %d: %w", row, err)
		}

		tx, err := decodeRow(row, record)
		if err != nil {
			flags = append(flags, Flag{
				Kind:   FlagValidationError,
				TxID:   fmt.Sprintf("row-%d", row),
				Detail: err.Error(),
			})
			continue
		}
		if year != 0 && tx.Date.Year() != year {
			continue
		}
		if usd, ok := tx.USD(); ok && usd.IsPositive() && usd.LessThan(M(dustThreshold, "USD")) {
			flags = append(flags, flagf(FlagDust, tx, "", "usd value %s is below the reporting threshold", usd))
			continue
		}
		txs = append(txs, tx)
	}
	return txs, flags, nil
}

func decodeRow(row int, record []string) (Transaction, error) {
	tx := Transaction{
		Row:          row,
		Type:         strings.TrimSpace(record[colType]),
		BuyCurrency:  strings.ToUpper(strings.TrimSpace(record[colBuyCurrency])),
		SellCurrency: strings.ToUpper(strings.TrimSpace(record[colSellCurrency])),
		FeeCurrency:  strings.ToUpper(strings.TrimSpace(record[colFeeCurrency])),
		Exchange:     strings.TrimSpace(record[colExchange]),
		ExchangeID:   strings.TrimSpace(record[colExchangeID]),
		Comment:      strings.TrimSpace(record[colComment]),
	}

	var err error
	if tx.Date, err = ParseDate(strings.TrimSpace(record[colDate])); err != nil {
		return tx, fmt.Errorf("row %d: bad date %q: %w", row, record[colDate], err)
	}
	if tx.BuyAmount, err = parseAmount(record[colBuyAmount]); err != nil {
		return tx, fmt.Errorf("row %d: bad buy amount %q: %w", row, record[colBuyAmount], err)
	}
	if tx.SellAmount, err = parseAmount(record[colSellAmount]); err != nil {
		return tx, fmt.Errorf("row %d: bad sell amount %q: %w", row, record[colSellAmount], err)
	}
	if tx.FeeAmount, err = parseAmount(record[colFeeAmount]); err != nil {
		return tx, fmt.Errorf("row %d: bad fee amount %q: %w", row, record[colFeeAmount], err)
	}

	if usd := strings.TrimSpace(record[colUSDEquivalent]); usd != "" {
		d, err := decimal.NewFromString(usd)
		if err != nil {
			return tx, fmt.Errorf("row %d: bad usd equivalent %q: %w", row, usd, err)
		}
		tx.USDEquivalent = decimal.NewNullDecimal(d)
	}
	return tx, nil
}

// parseAmount reads a possibly empty decimal field. Empty means zero.
func parseAmount(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Q(0), nil
	}
	return ParseQuantity(s)
}

// DecodeBalances reads the expected end-of-period balances, one "asset,quantity"
// csv row per asset, with or without a header line.
func DecodeBalances(r io.Reader) (map[string]Quantity, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	balances := make(map[string]Quantity)
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read balances row %d: %w", row, err)
		}
		asset := strings.ToUpper(strings.TrimSpace(record[0]))
		if row == 1 && strings.EqualFold(asset, "asset") {
			continue
		}
		q, err := ParseQuantity(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("balances row %d: bad quantity %q: %w", row, record[1], err)
		}
		balances[asset] = q
	}
	return balances, nil
}
