package cryptotax

import (
	"fmt"
	"sort"
)

// LotOrigin records how a lot entered the inventory.
type LotOrigin string

const (
	// LotSeeded lots were imported from the prior period's holdings.
	LotSeeded LotOrigin = "seeded"
	// LotAcquired lots were bought during the period.
	LotAcquired LotOrigin = "acquired"
	// LotIncome lots were created by an income event, at FMV basis.
	LotIncome LotOrigin = "income"
)

// Lot is a discrete quantity of an asset acquired at a known date with a known
// cost basis. A lot is owned by exactly one Queue and only ever shrinks, by
// consumption.
type Lot struct {
	ID       string
	Asset    string
	Date     Date     // acquisition date
	Quantity Quantity // remaining quantity
	Cost     Money    // total remaining cost basis in USD
	Origin   LotOrigin
	TxID     string // transaction (or seed entry) that created the lot
}

// UnitCost returns the cost basis per unit of the lot.
func (l Lot) UnitCost() Money {
	if l.Quantity.IsZero() {
		return USD(0)
	}
	return l.Cost.Div(l.Quantity)
}

// Segment is one slice of a consume operation: a quantity taken from a single
// lot, carrying that lot's acquisition date and a proportional share of its
// cost. A disposal spanning several lots yields several segments, in queue
// order.
type Segment struct {
	LotID           string
	Origin          LotOrigin
	Quantity        Quantity
	Cost            Money // basis consumed, proportional to quantity
	AcquisitionDate Date
}

// Queue is the ordered, per-asset inventory of cost-basis lots. Lots are kept
// in acquisition order (insertion order, since input is chronological) and
// consumed oldest-first.
//
// A Queue is exclusively owned by the single processing pass for its asset and
// is not safe for concurrent mutation.
type Queue struct {
	asset string
	lots  []Lot
	seq   int // lot id sequence
}

// NewQueue creates an empty queue for one asset.
func NewQueue(asset string) *Queue {
	return &Queue{asset: asset}
}

// Asset returns the asset this queue holds lots of.
func (q *Queue) Asset() string { return q.asset }

// Len returns the number of lots currently queued.
func (q *Queue) Len() int { return len(q.lots) }

// Push appends a lot to the tail of the queue and returns it.
func (q *Queue) Push(on Date, quantity Quantity, cost Money, origin LotOrigin, txID string) Lot {
	lot := Lot{
		ID:       fmt.Sprintf("%s_%s_%d", q.asset, on.time().Format("20060102"), q.seq),
		Asset:    q.asset,
		Date:     on,
		Quantity: quantity,
		Cost:     cost,
		Origin:   origin,
		TxID:     txID,
	}
	q.seq++
	q.lots = append(q.lots, lot)
	return lot
}

// Consume removes quantity units starting from the head of the queue and
// returns the consumed segments in queue order. When the head lot is larger
// than what remains to consume it is split in place: the consumed part keeps
// the lot's acquisition date and a proportional share of its cost, the rest
// stays queued.
//
// If the queue holds less than the requested quantity, consumption is capped
// at what is available and the unfilled remainder is returned as short. The
// queue never goes negative.
func (q *Queue) Consume(quantity Quantity) (segments []Segment, short Quantity) {
	remaining := quantity
	for len(q.lots) > 0 && remaining.IsPositive() {
		head := &q.lots[0]

		take := head.Quantity.Min(remaining)
		var cost Money
		if take.Equal(head.Quantity) {
			cost = head.Cost
		} else {
			cost = head.Cost.Mul(take).Div(head.Quantity)
		}

		segments = append(segments, Segment{
			LotID:           head.ID,
			Origin:          head.Origin,
			Quantity:        take,
			Cost:            cost,
			AcquisitionDate: head.Date,
		})
		remaining = remaining.Sub(take)

		if take.Equal(head.Quantity) {
			q.lots = q.lots[1:]
		} else {
			head.Quantity = head.Quantity.Sub(take)
			head.Cost = head.Cost.Sub(cost)
		}
	}
	return segments, remaining
}

// TotalQuantity returns the total queued quantity.
func (q *Queue) TotalQuantity() Quantity {
	total := Q(0)
	for _, lot := range q.lots {
		total = total.Add(lot.Quantity)
	}
	return total
}

// TotalCost returns the total queued cost basis.
func (q *Queue) TotalCost() Money {
	total := USD(0)
	for _, lot := range q.lots {
		total = total.Add(lot.Cost)
	}
	return total
}

// Lots returns a copy of the queued lots, head first.
func (q *Queue) Lots() []Lot {
	out := make([]Lot, len(q.lots))
	copy(out, q.lots)
	return out
}

// QueueSummary is the at-a-glance state of one asset's queue.
type QueueSummary struct {
	Asset           string
	Lots            int
	Quantity        Quantity
	Cost            Money
	AverageUnitCost Money
}

// Summary returns the queue's summary.
func (q *Queue) Summary() QueueSummary {
	s := QueueSummary{
		Asset:    q.asset,
		Lots:     len(q.lots),
		Quantity: q.TotalQuantity(),
		Cost:     q.TotalCost(),
	}
	if s.Quantity.IsPositive() {
		s.AverageUnitCost = s.Cost.Div(s.Quantity)
	} else {
		s.AverageUnitCost = USD(0)
	}
	return s
}

// Inventory is the explicit map from asset to its owned lot queue. It is
// passed through the processing pass rather than held in ambient state.
type Inventory struct {
	queues map[string]*Queue
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{queues: make(map[string]*Queue)}
}

// Queue returns the queue for an asset, creating it on first use.
func (inv *Inventory) Queue(asset string) *Queue {
	q, ok := inv.queues[asset]
	if !ok {
		q = NewQueue(asset)
		inv.queues[asset] = q
	}
	return q
}

// Assets returns the inventoried assets in stable, sorted order.
func (inv *Inventory) Assets() []string {
	assets := make([]string, 0, len(inv.queues))
	for asset := range inv.queues {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Summaries returns the per-asset queue summaries in sorted asset order.
func (inv *Inventory) Summaries() []QueueSummary {
	summaries := make([]QueueSummary, 0, len(inv.queues))
	for _, asset := range inv.Assets() {
		summaries = append(summaries, inv.queues[asset].Summary())
	}
	return summaries
}
