package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Portfolio is the holdings ledger of one account: symbol to share count.
// A symbol whose count would reach zero is removed, so every stored count
// is strictly positive.
type Portfolio struct {
	holdings map[string]int64
}

func NewPortfolio() *Portfolio {
	return &Portfolio{holdings: make(map[string]int64)}
}

// AddShares credits qty shares. The caller validates qty.
func (p *Portfolio) AddShares(symbol string, qty int64) {
	p.holdings[symbol] += qty
}

// RemoveShares debits qty shares, dropping the entry when nothing remains.
func (p *Portfolio) RemoveShares(symbol string, qty int64) {
	current := p.holdings[symbol]
	if qty >= current {
		delete(p.holdings, symbol)
		return
	}
	p.holdings[symbol] = current - qty
}

func (p *Portfolio) SharesOf(symbol string) int64 {
	return p.holdings[symbol]
}

func (p *Portfolio) Len() int {
	return len(p.holdings)
}

// Holdings returns a copy of the ledger.
func (p *Portfolio) Holdings() map[string]int64 {
	out := make(map[string]int64, len(p.holdings))
	for symbol, shares := range p.holdings {
		out[symbol] = shares
	}
	return out
}

// Symbols returns the held symbols in lexical order.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(p.holdings))
	for symbol := range p.holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Valuation prices every holding at the market's current price. Holdings
// whose symbol is no longer listed are skipped.
func (p *Portfolio) Valuation(market InstrumentLookup) (Decimal, error) {
	total := Zero
	for _, symbol := range p.Symbols() {
		inst, err := market.Lookup(symbol)
		if errors.Is(err, ErrUnknownSymbol) {
			continue
		}
		if err != nil {
			return Zero, err
		}

		value, err := inst.Price().MulInt(p.holdings[symbol])
		if err != nil {
			return Zero, fmt.Errorf("value %s: %w", symbol, err)
		}
		if total, err = total.Add(value); err != nil {
			return Zero, fmt.Errorf("value %s: %w", symbol, err)
		}
	}
	return total, nil
}
