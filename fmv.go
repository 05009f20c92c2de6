package cryptotax

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// FMVSource answers fair-market-value lookups in USD. The engine treats it as
// a capability: a missing price is reported through the ok return, never an
// error, so a single unpriced asset degrades one record instead of the run.
type FMVSource interface {
	// PriceUSD returns the USD price of one unit of asset on the given date.
	PriceUSD(asset string, on Date) (Money, bool)
}

// StaticPrices is an in-memory FMVSource keyed by "ASSET" or "ASSET@date".
// The dated key wins over the flat one. It is the source of choice for tests
// and for users supplying a handful of prices by hand.
type StaticPrices map[string]Money

// PriceUSD implements FMVSource.
func (p StaticPrices) PriceUSD(asset string, on Date) (Money, bool) {
	asset = strings.ToUpper(asset)
	if m, ok := p[asset+"@"+on.String()]; ok {
		return m, true
	}
	m, ok := p[asset]
	return m, ok
}

// NoPrices is an FMVSource that knows nothing. Every lookup misses and the
// engine flags the affected records as unpriced.
type NoPrices struct{}

// PriceUSD implements FMVSource.
func (NoPrices) PriceUSD(string, Date) (Money, bool) { return Money{}, false }

// QuoteFile is an FMVSource backed by a JSON document of daily quotes. The
// document layout is not fixed: a JSONPath template with $asset and $date
// placeholders selects the price, so one loader covers the various shapes
// exchanges publish.
//
// For example, with quotes like
//
//	{"BTC": {"2024-03-10": 68000.5}}
//
// the template is `$["$asset"]["$date"]`, the default.
type QuoteFile struct {
	doc      interface{}
	template string
}

// OpenQuoteFile reads and parses a JSON quote document.
func OpenQuoteFile(path, template string) (*QuoteFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read quote file: %w", err)
	}
	return NewQuoteFile(raw, template)
}

// NewQuoteFile parses a JSON quote document held in memory.
func NewQuoteFile(raw []byte, template string) (*QuoteFile, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse quote file: %w", err)
	}
	if template == "" {
		template = `$["$asset"]["$date"]`
	}
	return &QuoteFile{doc: doc, template: template}, nil
}

// PriceUSD implements FMVSource.
func (q *QuoteFile) PriceUSD(asset string, on Date) (Money, bool) {
	path := strings.ReplaceAll(q.template, "$asset", strings.ToUpper(asset))
	path = strings.ReplaceAll(path, "$date", on.String())

	v, err := jsonpath.Get(path, q.doc)
	if err != nil {
		return Money{}, false
	}
	switch val := v.(type) {
	case float64:
		return M(decimal.NewFromFloat(val), "USD"), true
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return Money{}, false
		}
		return M(d, "USD"), true
	default:
		return Money{}, false
	}
}
