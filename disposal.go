package cryptotax

// Term classifies a gain by holding period.
type Term string

const (
	ShortTerm Term = "short"
	LongTerm  Term = "long"
)

// longTermDays is the exclusive holding-period boundary: an asset held
// exactly 365 days is still short term, 366 days and beyond is long term.
const longTermDays = 365

// TermOf returns the holding-period term for a lot acquired and disposed on
// the given dates.
func TermOf(acquired, disposed Date) Term {
	if disposed.Sub(acquired) > longTermDays {
		return LongTerm
	}
	return ShortTerm
}

// GainRecord is one reportable capital gain or loss. A disposal spanning
// several lots produces one record per consumed segment, so that each record
// carries a single acquisition date and an unambiguous term.
type GainRecord struct {
	Asset           string
	TxID            string
	LotID           string
	AcquisitionDate Date
	DisposalDate    Date
	Quantity        Quantity
	Proceeds        Money
	Basis           Money
	Gain            Money
	Term            Term
}

// MarshalJSON implements the json.Marshaler interface for GainRecord.
func (g GainRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("asset", g.Asset)
	w.Append("tx", g.TxID)
	w.Optional("lot", g.LotID)
	w.Append("acquired", g.AcquisitionDate)
	w.Append("disposed", g.DisposalDate)
	w.Append("quantity", g.Quantity)
	w.Append("proceeds", g.Proceeds)
	w.Append("basis", g.Basis)
	w.Append("gain", g.Gain)
	w.Append("term", g.Term)
	return w.MarshalJSON()
}

// MatchDisposal consumes the disposed quantity from the asset's lot queue and
// emits one gain record per consumed segment, in queue order.
//
// Total proceeds come from the row's USD equivalent when present, otherwise
// from quantity times FMV at the disposal date, otherwise zero with a
// missing-fmv flag. A zero-proceeds leg (proven theft) skips pricing
// entirely. The priced fee reduces total proceeds before apportioning; with
// nothing priced there is nothing to reduce. Proceeds and fee are apportioned
// across segments by quantity share.
//
// When the queue holds less than the disposed quantity, only the matched part
// produces records: the shortfall is flagged, never turned into a record for
// units that were never in inventory.
func MatchDisposal(tx Transaction, leg DisposalLeg, fee Money, inv *Inventory, fmv FMVSource) ([]GainRecord, []Flag) {
	var flags []Flag

	proceeds := USD(0)
	if !leg.ZeroProceeds {
		if usd, ok := tx.USD(); ok {
			proceeds = usd.Sub(fee)
		} else if unit, ok := fmv.PriceUSD(leg.Asset, tx.Date); ok {
			proceeds = unit.Mul(leg.Quantity).Sub(fee)
		} else {
			flags = append(flags, flagf(FlagMissingFMV, tx, leg.Asset,
				"no USD equivalent and no price for %s on %s, proceeds taken as zero", leg.Asset, tx.Date))
		}
	}

	segments, short := inv.Queue(leg.Asset).Consume(leg.Quantity)
	if short.IsPositive() {
		flags = append(flags, flagf(FlagInsufficientLots, tx, leg.Asset,
			"disposal of %s exceeds inventory by %s, only the matched part is reported", leg.Quantity, short))
	}

	records := make([]GainRecord, 0, len(segments))
	for _, seg := range segments {
		share := proceeds.Mul(seg.Quantity).Div(leg.Quantity)
		records = append(records, GainRecord{
			Asset:           leg.Asset,
			TxID:            tx.ID(),
			LotID:           seg.LotID,
			AcquisitionDate: seg.AcquisitionDate,
			DisposalDate:    tx.Date,
			Quantity:        seg.Quantity,
			Proceeds:        share,
			Basis:           seg.Cost,
			Gain:            share.Sub(seg.Cost),
			Term:            TermOf(seg.AcquisitionDate, tx.Date),
		})
	}

	return records, flags
}
