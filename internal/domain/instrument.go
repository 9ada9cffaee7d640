package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MinimumPrice is the smallest price an instrument can be listed at.
var MinimumPrice = MustDecimal("0.01")

// Instrument is a tradable synthetic security. Symbol and name are fixed at
// construction; the price is mutated only by the market's random walk.
type Instrument struct {
	symbol string
	name   string

	mu    sync.RWMutex
	price Decimal
}

// Quote is a point-in-time view of an instrument.
type Quote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  Decimal `json:"price"`
}

func NewInstrument(symbol, name string, price Decimal) (*Instrument, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidInstrument)
	}
	if price.Cmp(MinimumPrice) < 0 {
		return nil, fmt.Errorf("%w: %s at %s", ErrInvalidPrice, symbol, price)
	}
	return &Instrument{
		symbol: symbol,
		name:   name,
		price:  price,
	}, nil
}

// NormalizeSymbol returns the canonical, case-insensitive form of a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (i *Instrument) Symbol() string { return i.symbol }
func (i *Instrument) Name() string   { return i.name }

func (i *Instrument) Price() Decimal {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.price
}

func (i *Instrument) setPrice(price Decimal) {
	i.mu.Lock()
	i.price = price
	i.mu.Unlock()
}

func (i *Instrument) Quote() Quote {
	return Quote{Symbol: i.symbol, Name: i.name, Price: i.Price()}
}

func (i *Instrument) String() string {
	return fmt.Sprintf("%s (%s) - %s", i.symbol, i.name, i.Price())
}

// MarshalJSON implements the json.Marshaler interface.
func (i *Instrument) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Quote())
}
