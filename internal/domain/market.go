package domain

import (
	"fmt"
	"sync"
)

// PriceFloor is the lowest price the random walk can move an instrument to.
var PriceFloor = MustDecimal("1.00")

// maxWalkStep is the half-width of the walk interval: a draw r in [0,1)
// maps to a change of (r-0.5)*0.1, i.e. [-5%, +5%).
const maxWalkStep = 0.1

// RandomSource yields uniform floats in [0,1).
type RandomSource interface {
	Float64() float64
}

// InstrumentLookup resolves a symbol to a listed instrument.
type InstrumentLookup interface {
	Lookup(symbol string) (*Instrument, error)
}

// Market owns the listed instruments and evolves their prices.
type Market struct {
	instruments []*Instrument
	bySymbol    map[string]*Instrument

	walkMu sync.Mutex
	random RandomSource
}

func NewMarket(random RandomSource, instruments ...*Instrument) (*Market, error) {
	if random == nil {
		return nil, fmt.Errorf("market requires a random source")
	}

	m := &Market{
		instruments: make([]*Instrument, 0, len(instruments)),
		bySymbol:    make(map[string]*Instrument, len(instruments)),
		random:      random,
	}
	for _, inst := range instruments {
		if inst == nil {
			return nil, ErrInvalidInstrument
		}
		if _, exists := m.bySymbol[inst.Symbol()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInstrument, inst.Symbol())
		}
		m.bySymbol[inst.Symbol()] = inst
		m.instruments = append(m.instruments, inst)
	}
	return m, nil
}

// Lookup finds an instrument by symbol, ignoring case.
func (m *Market) Lookup(symbol string) (*Instrument, error) {
	inst, ok := m.bySymbol[NormalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return inst, nil
}

// ListAll returns the instruments in listing order. Callers must not modify
// the returned slice.
func (m *Market) ListAll() []*Instrument {
	return m.instruments
}

// Quotes returns a snapshot of every instrument taken between walks.
func (m *Market) Quotes() []Quote {
	m.walkMu.Lock()
	defer m.walkMu.Unlock()

	quotes := make([]Quote, 0, len(m.instruments))
	for _, inst := range m.instruments {
		quotes = append(quotes, inst.Quote())
	}
	return quotes
}

// ApplyRandomWalk moves every price by an independent draw in [-5%, +5%)
// and clamps the result at PriceFloor. It returns the quotes the walk
// produced, taken before any other walk can run.
func (m *Market) ApplyRandomWalk() ([]Quote, error) {
	m.walkMu.Lock()
	defer m.walkMu.Unlock()

	next := make([]Decimal, len(m.instruments))
	for i, inst := range m.instruments {
		price, err := m.step(inst.Price())
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", inst.Symbol(), err)
		}
		next[i] = price
	}

	quotes := make([]Quote, 0, len(m.instruments))
	for i, inst := range m.instruments {
		inst.setPrice(next[i])
		quotes = append(quotes, inst.Quote())
	}
	return quotes, nil
}

func (m *Market) step(price Decimal) (Decimal, error) {
	pct, err := NewDecimalFromFloat((m.random.Float64() - 0.5) * maxWalkStep)
	if err != nil {
		return Zero, err
	}
	factor, err := NewDecimalFromInt(1).Add(pct)
	if err != nil {
		return Zero, err
	}
	moved, err := price.Mul(factor)
	if err != nil {
		return Zero, err
	}
	return moved.Max(PriceFloor), nil
}

// PriceBook is a frozen set of quotes that can stand in for a Market when
// several reads must agree on prices.
type PriceBook map[string]*Instrument

func NewPriceBook(quotes []Quote) (PriceBook, error) {
	book := make(PriceBook, len(quotes))
	for _, q := range quotes {
		inst, err := NewInstrument(q.Symbol, q.Name, q.Price)
		if err != nil {
			return nil, err
		}
		book[inst.Symbol()] = inst
	}
	return book, nil
}

func (b PriceBook) Lookup(symbol string) (*Instrument, error) {
	inst, ok := b[NormalizeSymbol(symbol)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return inst, nil
}
