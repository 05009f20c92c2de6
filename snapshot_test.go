package cryptotax

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshot_EncodeDecodeRoundTrip(t *testing.T) {
	want := &Snapshot{
		AsOf: NewDate(2024, time.December, 31),
		Lots: []SnapshotLot{
			{Asset: "BTC", Date: NewDate(2020, time.May, 1), Quantity: Q(0.5), Cost: USD(4500), TxID: "t1"},
			{Asset: "ETH", Date: NewDate(2024, time.March, 1), Quantity: Q(2), Cost: USD(4000), TxID: "t7"},
		},
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, want); err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}

	got, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("DecodeSnapshot() failed: %v", err)
	}
	if got.AsOf != want.AsOf {
		t.Errorf("as-of = %s, want %s", got.AsOf, want.AsOf)
	}
	if len(got.Lots) != len(want.Lots) {
		t.Fatalf("got %d lots, want %d", len(got.Lots), len(want.Lots))
	}
	for i := range want.Lots {
		w, g := want.Lots[i], got.Lots[i]
		if g.Asset != w.Asset || g.Date != w.Date || !g.Quantity.Equal(w.Quantity) || !g.Cost.Equal(w.Cost) || g.TxID != w.TxID {
			t.Errorf("lot %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestSnapshot_IsOneLinePerLot(t *testing.T) {
	s := &Snapshot{
		AsOf: NewDate(2024, time.December, 31),
		Lots: []SnapshotLot{
			{Asset: "BTC", Date: NewDate(2020, time.May, 1), Quantity: Q(1), Cost: USD(9000)},
		},
	}
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, s); err != nil {
		t.Fatalf("EncodeSnapshot() failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("snapshot has %d lines, want header + 1 lot:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"snapshot":"2024-12-31"`) {
		t.Errorf("header line = %s", lines[0])
	}
}

func TestSnapshot_DecodeRejectsMalformedLine(t *testing.T) {
	in := `{"snapshot":"2024-12-31"}
{"asset":"BTC","date":"2020-05-01","quantity":"1","cost":"9000"}
not json`
	if _, err := DecodeSnapshot(strings.NewReader(in)); err == nil {
		t.Fatal("DecodeSnapshot() on malformed input succeeded, want error")
	}
}

func TestSnapshot_DecodeRejectsLotWithoutAsset(t *testing.T) {
	in := `{"date":"2020-05-01","quantity":"1","cost":"9000"}`
	if _, err := DecodeSnapshot(strings.NewReader(in)); err == nil {
		t.Fatal("DecodeSnapshot() on asset-less lot succeeded, want error")
	}
}

// Seeding from a snapshot and snapshotting again must reproduce the same
// holdings: rollover is a fixpoint.
func TestSnapshot_RolloverIsIdempotent(t *testing.T) {
	e := NewEngine(nil)
	e.ProcessAll([]Transaction{
		{Row: 1, Type: "Trade", Date: NewDate(2024, time.January, 10), BuyAmount: Q(2), BuyCurrency: "BTC", USDEquivalent: decimal.NewNullDecimal(decimal.NewFromInt(60000))},
		{Row: 2, Type: "Trade", Date: NewDate(2024, time.June, 1), SellAmount: Q(0.5), SellCurrency: "BTC", USDEquivalent: decimal.NewNullDecimal(decimal.NewFromInt(20000))},
	})
	first := e.Close(NewDate(2024, time.December, 31), nil).Snapshot

	next := NewEngine(nil)
	next.Seed(first)
	second := next.Close(NewDate(2025, time.December, 31), nil).Snapshot

	if len(second.Lots) != len(first.Lots) {
		t.Fatalf("reseeded snapshot has %d lots, want %d", len(second.Lots), len(first.Lots))
	}
	for i := range first.Lots {
		w, g := first.Lots[i], second.Lots[i]
		if g.Asset != w.Asset || g.Date != w.Date || !g.Quantity.Equal(w.Quantity) || !g.Cost.Equal(w.Cost) {
			t.Errorf("lot %d = %+v, want %+v", i, g, w)
		}
	}

	holdings := second.Holdings()
	if !holdings["BTC"].Equal(Q(1.5)) {
		t.Errorf("BTC holdings = %s, want 1.5", holdings["BTC"])
	}
}
