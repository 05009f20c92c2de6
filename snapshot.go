package cryptotax

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// SnapshotLot is one surviving lot in a period snapshot. It carries exactly
// what the next period needs to seed from: original acquisition date and
// remaining basis, so holding periods and unrealized basis roll over intact.
type SnapshotLot struct {
	Asset    string
	Date     Date
	Quantity Quantity
	Cost     Money
	TxID     string
}

// Snapshot is the end-of-period inventory state. Feeding a snapshot back as
// the next period's seed reproduces the same queues: snapshotting is a
// fixpoint of seeding.
type Snapshot struct {
	AsOf Date
	Lots []SnapshotLot
}

// TakeSnapshot captures the inventory's surviving lots, per asset in sorted
// order, head lot first.
func TakeSnapshot(inv *Inventory, on Date) *Snapshot {
	s := &Snapshot{AsOf: on}
	for _, asset := range inv.Assets() {
		for _, lot := range inv.Queue(asset).Lots() {
			s.Lots = append(s.Lots, SnapshotLot{
				Asset:    lot.Asset,
				Date:     lot.Date,
				Quantity: lot.Quantity,
				Cost:     lot.Cost,
				TxID:     lot.TxID,
			})
		}
	}
	return s
}

// Holdings returns the snapshot's total quantity per asset.
func (s *Snapshot) Holdings() map[string]Quantity {
	holdings := make(map[string]Quantity)
	for _, lot := range s.Lots {
		holdings[lot.Asset] = holdings[lot.Asset].Add(lot.Quantity)
	}
	return holdings
}

// snapshotLine is the wire form of one JSONL line. Cost is a plain USD
// decimal on the wire.
type snapshotLine struct {
	AsOf     *Date           `json:"snapshot,omitempty"`
	Asset    string          `json:"asset,omitempty"`
	Date     Date            `json:"date,omitzero"`
	Quantity Quantity        `json:"quantity,omitzero"`
	Cost     decimal.Decimal `json:"cost"`
	TxID     string          `json:"tx,omitempty"`
}

// EncodeSnapshot writes the snapshot as JSONL: a header line carrying the
// as-of date, then one line per lot. The format is append-friendly and
// line-diffable, which keeps snapshots reviewable in version control.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	var hdr jsonObjectWriter
	hdr.Append("snapshot", s.AsOf)
	b, err := hdr.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode snapshot header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
		return err
	}

	for _, lot := range s.Lots {
		var line jsonObjectWriter
		line.Append("asset", lot.Asset)
		line.Append("date", lot.Date)
		line.Append("quantity", lot.Quantity)
		line.Append("cost", lot.Cost.value)
		line.Optional("tx", lot.TxID)
		b, err := line.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode snapshot lot: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSnapshot reads a JSONL snapshot. A malformed line is a structural
// error and fails the decode: a seed you cannot trust is worse than no seed.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	s := &Snapshot{}
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line snapshotLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", n, err)
		}
		if line.AsOf != nil {
			s.AsOf = *line.AsOf
			continue
		}
		if line.Asset == "" {
			return nil, fmt.Errorf("snapshot line %d: lot without asset", n)
		}
		s.Lots = append(s.Lots, SnapshotLot{
			Asset:    line.Asset,
			Date:     line.Date,
			Quantity: line.Quantity,
			Cost:     M(line.Cost, "USD"),
			TxID:     line.TxID,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read snapshot: %w", err)
	}
	return s, nil
}
