package domain

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Account is the trader's cash, holdings ledger and trade history. Buy and
// Sell touch all three under one lock and either apply completely or leave
// the account untouched.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu        sync.Mutex
	cash      Decimal
	portfolio *Portfolio
	trades    []Trade
}

func NewAccount(name string, startingCash Decimal) (*Account, error) {
	if !startingCash.IsFinite() || startingCash.IsNegative() {
		return nil, fmt.Errorf("%w: starting cash %s", ErrInvalidAmount, startingCash)
	}
	return &Account{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
		cash:      startingCash,
		portfolio: NewPortfolio(),
		trades:    make([]Trade, 0),
	}, nil
}

// Buy purchases qty shares of symbol at the instrument's current price.
func (a *Account) Buy(market InstrumentLookup, symbol string, qty int64) (Trade, error) {
	if qty <= 0 {
		return Trade{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	inst, err := market.Lookup(symbol)
	if err != nil {
		return Trade{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if owned := a.portfolio.SharesOf(inst.Symbol()); qty > math.MaxInt64-owned {
		return Trade{}, fmt.Errorf("%w: %d more %s would overflow the %d already held", ErrInvalidQuantity, qty, inst.Symbol(), owned)
	}

	price := inst.Price()
	cost, err := price.MulInt(qty)
	if err != nil {
		return Trade{}, fmt.Errorf("cost of %d %s: %w", qty, inst.Symbol(), err)
	}
	if a.cash.Cmp(cost) < 0 {
		return Trade{}, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost, a.cash)
	}
	cash, err := a.cash.Sub(cost)
	if err != nil {
		return Trade{}, err
	}

	trade := NewTrade(TradeKindBuy, inst.Symbol(), qty, price)
	a.cash = cash
	a.portfolio.AddShares(inst.Symbol(), qty)
	a.trades = append(a.trades, trade)
	return trade, nil
}

// Sell disposes of qty owned shares of symbol at the current price.
func (a *Account) Sell(market InstrumentLookup, symbol string, qty int64) (Trade, error) {
	if qty <= 0 {
		return Trade{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	inst, err := market.Lookup(symbol)
	if err != nil {
		return Trade{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if owned := a.portfolio.SharesOf(inst.Symbol()); owned < qty {
		return Trade{}, fmt.Errorf("%w: own %d %s, asked to sell %d", ErrInsufficientShares, owned, inst.Symbol(), qty)
	}

	price := inst.Price()
	proceeds, err := price.MulInt(qty)
	if err != nil {
		return Trade{}, fmt.Errorf("proceeds of %d %s: %w", qty, inst.Symbol(), err)
	}
	cash, err := a.cash.Add(proceeds)
	if err != nil {
		return Trade{}, err
	}

	trade := NewTrade(TradeKindSell, inst.Symbol(), qty, price)
	a.cash = cash
	a.portfolio.RemoveShares(inst.Symbol(), qty)
	a.trades = append(a.trades, trade)
	return trade, nil
}

// Deposit adds cash to the account. The new balance must be exact.
func (a *Account) Deposit(amount Decimal) error {
	if !amount.IsFinite() || !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cash, err := a.cash.AddExact(amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	a.cash = cash
	return nil
}

// Withdraw removes cash from the account if enough is available.
func (a *Account) Withdraw(amount Decimal) error {
	if !amount.IsFinite() || !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cash.Cmp(amount) < 0 {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, amount, a.cash)
	}
	cash, err := a.cash.SubExact(amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	a.cash = cash
	return nil
}

func (a *Account) Cash() Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// History returns the executed trades in execution order.
func (a *Account) History() []Trade {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Trade, len(a.trades))
	copy(out, a.trades)
	return out
}

// Holdings returns a copy of the share counts by symbol.
func (a *Account) Holdings() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.Holdings()
}

func (a *Account) Shares(symbol string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.SharesOf(NormalizeSymbol(symbol))
}

// HoldingsValue values the holdings against the market's current prices.
func (a *Account) HoldingsValue(market InstrumentLookup) (Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.Valuation(market)
}

// AccountSnapshot is cash, holdings, their value and history read together.
type AccountSnapshot struct {
	Cash          Decimal
	Holdings      map[string]int64
	HoldingsValue Decimal
	Trades        []Trade
}

// Snapshot reads the account under a single lock and values the holdings
// against market.
func (a *Account) Snapshot(market InstrumentLookup) (AccountSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	value, err := a.portfolio.Valuation(market)
	if err != nil {
		return AccountSnapshot{}, err
	}

	trades := make([]Trade, len(a.trades))
	copy(trades, a.trades)
	return AccountSnapshot{
		Cash:          a.cash,
		Holdings:      a.portfolio.Holdings(),
		HoldingsValue: value,
		Trades:        trades,
	}, nil
}
