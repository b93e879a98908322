package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Build replays a partition's events into the ordered cost basis entries.
// The walk is deterministic: the same events always produce the same rows,
// so a rebuild can replace a partition byte for byte.
//
// The accumulator runs in decimal and only the persisted fields are
// rounded, so long partitions never accumulate float drift. Dispositions
// relieve basis at the running average cost; disposing more shares than
// are held drives the share count negative rather than failing, keeping
// short-position bookkeeping visible in the ledger. A zero share balance
// carries the previous basis-per-share forward instead of dividing.
func Build(accountID, tickerID int64, events []Event) []Entry {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DateUnix != ordered[j].DateUnix {
			return ordered[i].DateUnix < ordered[j].DateUnix
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	shares := decimal.Zero
	basis := decimal.Zero
	basisPerShare := decimal.Zero

	entries := make([]Entry, 0, len(ordered))
	for _, ev := range ordered {
		var sharesDelta, costPerShare, amount decimal.Decimal

		switch ev.Kind {
		case KindAcquisition:
			sharesDelta = decimal.NewFromFloat(ev.Shares)
			costPerShare = decimal.NewFromFloat(ev.CostPerShare)
			amount = sharesDelta.Mul(costPerShare)

		case KindDisposition:
			n := decimal.NewFromFloat(ev.Shares)
			avgCost := decimal.Zero
			if shares.IsPositive() {
				avgCost = basis.Div(shares)
			}
			sharesDelta = n.Neg()
			costPerShare = avgCost
			amount = n.Mul(avgCost).Neg()

		case KindCashOnly:
			amount = decimal.NewFromFloat(ev.Amount)
		}

		shares = shares.Add(sharesDelta)
		basis = basis.Add(amount)

		if !shares.IsZero() {
			basisPerShare = basis.Div(shares)
		}

		entries = append(entries, Entry{
			AccountID:       accountID,
			TickerID:        tickerID,
			TradeID:         ev.TradeID,
			TransactionDate: ev.Date,
			Seq:             ev.Seq,
			Description:     ev.Description,
			Shares:          sharesDelta.InexactFloat64(),
			CostPerShare:    costPerShare.Round(2).InexactFloat64(),
			Amount:          amount.Round(2).InexactFloat64(),
			RunningBasis:    basis.Round(2).InexactFloat64(),
			RunningShares:   shares.InexactFloat64(),
			BasisPerShare:   basisPerShare.Round(2).InexactFloat64(),
		})
	}

	return entries
}
