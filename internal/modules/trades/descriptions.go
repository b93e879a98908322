package trades

import (
	"fmt"
	"strconv"

	"github.com/greenmangroup/wheelhouse/internal/utils"
)

// Description builders for ledger entries and trade-derived cash flows.
// The formats mirror broker statement lines so the cost basis ledger reads
// like the account history it replaces.

// PutOrCall maps an option trade type to its statement label.
func PutOrCall(tradeType string) string {
	if tradeType == TypeCallRoll {
		return "CALL"
	}
	return "PUT"
}

// OptionOpenDescription renders a sold option position, e.g.
// "SELL -2 AMD 100 19-APR-24 55 PUT @1.58".
func OptionOpenDescription(t *Trade) string {
	return fmt.Sprintf("SELL -%d %s 100 %s %s %s @%s",
		t.NumOfContracts,
		t.Ticker,
		expiryLabel(t.ExpirationDate),
		formatNum(t.StrikePrice),
		PutOrCall(t.TradeType),
		formatNum(t.Premium),
	)
}

// RollDescription renders a roll successor as a diagonal order, e.g.
// "SELL -2 DIAGONAL AMD 100 17-MAY-24/19-APR-24 52.5/55 PUT @ 1.2".
// New expiration and strike come first, the replaced leg second.
func RollDescription(successor, predecessor *Trade) string {
	return fmt.Sprintf("SELL -%d DIAGONAL %s 100 %s/%s %s/%s %s @ %s",
		successor.NumOfContracts,
		successor.Ticker,
		expiryLabel(successor.ExpirationDate),
		expiryLabel(predecessor.ExpirationDate),
		formatNum(successor.StrikePrice),
		formatNum(predecessor.StrikePrice),
		PutOrCall(successor.TradeType),
		formatNum(successor.Premium),
	)
}

// AssignedDescription renders an assignment settlement, e.g.
// "ASSIGNED 19-APR-24 PUT". Dated at the option's expiration.
func AssignedDescription(t *Trade) string {
	return fmt.Sprintf("ASSIGNED %s %s", expiryLabel(t.ExpirationDate), PutOrCall(t.TradeType))
}

// StockLegDescription renders a direct share purchase or sale, e.g.
// "BUY 100 AMD @10" / "SELL 40 AMD @12".
func StockLegDescription(t *Trade) string {
	verb := "BUY"
	if t.TradeType == TypeSellToClose {
		verb = "SELL"
	}
	return fmt.Sprintf("%s %d %s @%s", verb, t.NumOfContracts, t.Ticker, formatNum(t.Premium))
}

// DividendDescription renders a dividend receipt, e.g. "DIVIDEND AMD".
func DividendDescription(t *Trade) string {
	return fmt.Sprintf("DIVIDEND %s", t.Ticker)
}

// expiryLabel formats a YYYY-MM-DD date in statement style (19-APR-24).
// Nil or malformed dates render as-is so a bad row stays visible instead
// of breaking the ledger build.
func expiryLabel(date *string) string {
	if date == nil {
		return ""
	}
	unix, err := utils.DateToUnix(*date)
	if err != nil {
		return *date
	}
	return utils.FormatExpiry(unix)
}

// formatNum renders a number without trailing zeros (55, 52.5, 1.58).
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
