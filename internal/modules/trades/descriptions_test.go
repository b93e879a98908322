package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionOpenDescription(t *testing.T) {
	exp := "2024-04-19"
	trade := &Trade{
		Ticker:         "AMD",
		TradeType:      TypePutRoll,
		ExpirationDate: &exp,
		NumOfContracts: 2,
		StrikePrice:    55,
		Premium:        1.58,
	}

	assert.Equal(t, "SELL -2 AMD 100 19-APR-24 55 PUT @1.58", OptionOpenDescription(trade))
}

func TestRollDescriptionOrdersNewLegFirst(t *testing.T) {
	oldExp, newExp := "2024-04-19", "2024-05-17"
	predecessor := &Trade{
		Ticker:         "AMD",
		TradeType:      TypePutRoll,
		ExpirationDate: &oldExp,
		NumOfContracts: 2,
		StrikePrice:    55,
		Premium:        1.58,
	}
	successor := &Trade{
		Ticker:         "AMD",
		TradeType:      TypePutRoll,
		ExpirationDate: &newExp,
		NumOfContracts: 2,
		StrikePrice:    52.5,
		Premium:        1.2,
	}

	assert.Equal(t,
		"SELL -2 DIAGONAL AMD 100 17-MAY-24/19-APR-24 52.5/55 PUT @ 1.2",
		RollDescription(successor, predecessor),
	)
}

func TestAssignedDescription(t *testing.T) {
	exp := "2024-04-19"
	put := &Trade{TradeType: TypePutRoll, ExpirationDate: &exp}
	call := &Trade{TradeType: TypeCallRoll, ExpirationDate: &exp}

	assert.Equal(t, "ASSIGNED 19-APR-24 PUT", AssignedDescription(put))
	assert.Equal(t, "ASSIGNED 19-APR-24 CALL", AssignedDescription(call))
}

func TestStockLegDescriptions(t *testing.T) {
	buy := &Trade{Ticker: "AMD", TradeType: TypeBuyToOpen, NumOfContracts: 100, Premium: 10}
	sell := &Trade{Ticker: "AMD", TradeType: TypeSellToClose, NumOfContracts: 40, Premium: 12}

	assert.Equal(t, "BUY 100 AMD @10", StockLegDescription(buy))
	assert.Equal(t, "SELL 40 AMD @12", StockLegDescription(sell))
}
