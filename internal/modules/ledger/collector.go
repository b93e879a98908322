package ledger

import (
	"fmt"

	"github.com/greenmangroup/wheelhouse/internal/modules/trades"
	"github.com/greenmangroup/wheelhouse/internal/utils"
	"github.com/greenmangroup/wheelhouse/pkg/formulas"
)

// CollectEvents derives the cost basis events for one partition from its
// trades, already loaded in replay order. Each trade type maps to an
// explicit event variant:
//
//   - buy_to_open acquires shares at the fill price, sell_to_close
//     disposes them at average cost.
//   - a sold option books its premium as a cash-only credit that lowers
//     the basis; an assigned option additionally settles shares at the
//     strike on the expiration date (puts acquire, calls dispose).
//   - an assigned stock row acquires shares at the strike directly.
//   - a dividend is a cash-only credit against the basis.
//
// Malformed dates are rejected here; the builder never sees one.
func CollectEvents(partition []trades.Trade) ([]Event, error) {
	byID := make(map[int64]*trades.Trade, len(partition))
	for i := range partition {
		byID[partition[i].ID] = &partition[i]
	}

	var events []Event
	for i := range partition {
		t := &partition[i]

		tradeDateUnix, err := utils.DateToUnix(t.TradeDate)
		if err != nil {
			return nil, fmt.Errorf("trade %d has invalid trade date: %w", t.ID, err)
		}

		tradeID := t.ID

		switch t.TradeType {
		case trades.TypeBuyToOpen:
			events = append(events, NewAcquisition(
				t.TradeDate, tradeDateUnix, t.Seq, &tradeID,
				trades.StockLegDescription(t),
				float64(t.NumOfContracts), t.Premium,
			))

		case trades.TypeSellToClose:
			events = append(events, NewDisposition(
				t.TradeDate, tradeDateUnix, t.Seq, &tradeID,
				trades.StockLegDescription(t),
				float64(t.NumOfContracts),
			))

		case trades.TypeAssigned:
			date, dateUnix := t.TradeDate, tradeDateUnix
			if t.ExpirationDate != nil {
				if unix, err := utils.DateToUnix(*t.ExpirationDate); err == nil {
					date, dateUnix = *t.ExpirationDate, unix
				}
			}
			events = append(events, NewAcquisition(
				date, dateUnix, t.Seq, &tradeID,
				trades.AssignedDescription(t),
				float64(t.NumOfContracts), t.StrikePrice,
			))

		case trades.TypePutRoll, trades.TypeCallRoll:
			description := trades.OptionOpenDescription(t)
			if t.TradeParentID != nil {
				if predecessor, ok := byID[*t.TradeParentID]; ok {
					description = trades.RollDescription(t, predecessor)
				}
			}
			if t.TotalPremium != 0 {
				events = append(events, NewCashOnly(
					t.TradeDate, tradeDateUnix, t.Seq, &tradeID,
					description,
					-t.TotalPremium,
				))
			}
			if t.Status == trades.StatusAssigned {
				settlement, err := assignmentEvent(t, tradeDateUnix)
				if err != nil {
					return nil, err
				}
				events = append(events, settlement)
			}

		case trades.TypeDividend:
			events = append(events, NewCashOnly(
				t.TradeDate, tradeDateUnix, t.Seq, &tradeID,
				trades.DividendDescription(t),
				-t.TotalPremium,
			))
		}
	}

	return events, nil
}

// assignmentEvent settles an assigned option: shares change hands at the
// strike on the expiration date. An assigned put buys the shares, an
// assigned call delivers them.
func assignmentEvent(t *trades.Trade, tradeDateUnix int64) (Event, error) {
	date, dateUnix := t.TradeDate, tradeDateUnix
	if t.ExpirationDate != nil {
		unix, err := utils.DateToUnix(*t.ExpirationDate)
		if err != nil {
			return Event{}, fmt.Errorf("trade %d has invalid expiration date: %w", t.ID, err)
		}
		date, dateUnix = *t.ExpirationDate, unix
	}

	shares := float64(t.NumOfContracts * formulas.SharesPerContract)
	tradeID := t.ID

	if t.TradeType == trades.TypeCallRoll {
		return NewDisposition(
			date, dateUnix, t.Seq, &tradeID,
			trades.AssignedDescription(t),
			shares,
		), nil
	}
	return NewAcquisition(
		date, dateUnix, t.Seq, &tradeID,
		trades.AssignedDescription(t),
		shares, t.StrikePrice,
	), nil
}
