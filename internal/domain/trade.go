package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TradeKind string

const (
	TradeKindBuy  TradeKind = "BUY"
	TradeKindSell TradeKind = "SELL"
)

// Trade records one executed order. It is a value: the account only ever
// hands out copies, so a recorded trade cannot change.
type Trade struct {
	ID        string    `json:"id"`
	Kind      TradeKind `json:"kind"`
	Symbol    string    `json:"symbol"`
	Quantity  int64     `json:"quantity"`
	UnitPrice Decimal   `json:"unit_price"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTrade(kind TradeKind, symbol string, quantity int64, unitPrice Decimal) Trade {
	return Trade{
		ID:        uuid.New().String(),
		Kind:      kind,
		Symbol:    symbol,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Timestamp: time.Now(),
	}
}

// Total is the cash that changed hands.
func (t Trade) Total() (Decimal, error) {
	return t.UnitPrice.MulInt(t.Quantity)
}

func (t Trade) String() string {
	return fmt.Sprintf("%s: %s %d shares of %s at %s",
		t.Timestamp.Format(time.RFC1123), t.Kind, t.Quantity, t.Symbol, t.UnitPrice)
}
