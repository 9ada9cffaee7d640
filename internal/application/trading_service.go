package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

// HoldingView is one priced line of the holdings ledger.
type HoldingView struct {
	Symbol string         `json:"symbol"`
	Name   string         `json:"name"`
	Shares int64          `json:"shares"`
	Price  domain.Decimal `json:"price"`
	Value  domain.Decimal `json:"value"`
}

// AccountSummary is everything the portfolio screen shows.
type AccountSummary struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Cash          domain.Decimal `json:"cash"`
	Holdings      []HoldingView  `json:"holdings"`
	HoldingsValue domain.Decimal `json:"holdings_value"`
	TotalValue    domain.Decimal `json:"total_value"`
	Trades        []domain.Trade `json:"trades"`
}

type TradingService struct {
	repo    domain.AccountRepository
	market  *domain.Market
	account *domain.Account
	feed    *PriceFeed
}

func NewTradingService(repo domain.AccountRepository, market *domain.Market, accountName string, startingCash domain.Decimal) (*TradingService, error) {
	account, err := domain.NewAccount(accountName, startingCash)
	if err != nil {
		return nil, fmt.Errorf("failed to open account: %w", err)
	}
	// Use background context for initialization since there's no request context yet
	if err := repo.Save(context.Background(), account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	return &TradingService{
		repo:    repo,
		market:  market,
		account: account,
		feed:    NewPriceFeed(),
	}, nil
}

func (s *TradingService) ListInstruments(ctx context.Context) ([]domain.Quote, error) {
	return s.market.Quotes(), nil
}

func (s *TradingService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	inst, err := s.market.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	quote := inst.Quote()
	return &quote, nil
}

func (s *TradingService) GetAccountSummary(ctx context.Context) (*AccountSummary, error) {
	return s.summarize(s.account)
}

func (s *TradingService) GetAccount(ctx context.Context, id string) (*AccountSummary, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return s.summarize(account)
}

func (s *TradingService) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	return s.account.History(), nil
}

func (s *TradingService) Buy(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error) {
	trade, err := s.account.Buy(s.market, symbol, quantity)
	if err != nil {
		slog.DebugContext(ctx, "Buy rejected", "symbol", symbol, "quantity", quantity, "error", err)
		return nil, fmt.Errorf("buy rejected: %w", err)
	}
	slog.InfoContext(ctx, "Bought shares", "symbol", trade.Symbol, "quantity", trade.Quantity, "price", trade.UnitPrice.Float64())

	if err := s.repo.Save(ctx, s.account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return &trade, nil
}

func (s *TradingService) Sell(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error) {
	trade, err := s.account.Sell(s.market, symbol, quantity)
	if err != nil {
		slog.DebugContext(ctx, "Sell rejected", "symbol", symbol, "quantity", quantity, "error", err)
		return nil, fmt.Errorf("sell rejected: %w", err)
	}
	slog.InfoContext(ctx, "Sold shares", "symbol", trade.Symbol, "quantity", trade.Quantity, "price", trade.UnitPrice.Float64())

	if err := s.repo.Save(ctx, s.account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return &trade, nil
}

func (s *TradingService) Deposit(ctx context.Context, amount domain.Decimal) (*AccountSummary, error) {
	if err := s.account.Deposit(amount); err != nil {
		return nil, fmt.Errorf("deposit rejected: %w", err)
	}
	if err := s.repo.Save(ctx, s.account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return s.summarize(s.account)
}

func (s *TradingService) Withdraw(ctx context.Context, amount domain.Decimal) (*AccountSummary, error) {
	if err := s.account.Withdraw(amount); err != nil {
		return nil, fmt.Errorf("withdraw rejected: %w", err)
	}
	if err := s.repo.Save(ctx, s.account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return s.summarize(s.account)
}

// Tick applies one random walk step and publishes the new quotes.
func (s *TradingService) Tick(ctx context.Context) ([]domain.Quote, error) {
	quotes, err := s.market.ApplyRandomWalk()
	if err != nil {
		return nil, fmt.Errorf("failed to update prices: %w", err)
	}
	s.feed.Publish(PriceTick{Quotes: quotes, Timestamp: time.Now()})
	return quotes, nil
}

// Subscribe registers for price ticks. The returned function unsubscribes.
func (s *TradingService) Subscribe() (<-chan PriceTick, func()) {
	return s.feed.Subscribe()
}

func (s *TradingService) summarize(account *domain.Account) (*AccountSummary, error) {
	// One set of prices for every line and the total.
	quotes := s.market.Quotes()
	book, err := domain.NewPriceBook(quotes)
	if err != nil {
		return nil, fmt.Errorf("failed to freeze quotes: %w", err)
	}

	snapshot, err := account.Snapshot(book)
	if err != nil {
		return nil, fmt.Errorf("failed to value holdings: %w", err)
	}

	summary := &AccountSummary{
		ID:            account.ID,
		Name:          account.Name,
		Cash:          snapshot.Cash,
		Holdings:      make([]HoldingView, 0, len(snapshot.Holdings)),
		HoldingsValue: snapshot.HoldingsValue,
		Trades:        snapshot.Trades,
	}

	// Holdings follow market listing order; delisted symbols are not shown.
	for _, q := range quotes {
		shares, ok := snapshot.Holdings[q.Symbol]
		if !ok {
			continue
		}
		value, err := q.Price.MulInt(shares)
		if err != nil {
			return nil, fmt.Errorf("failed to value %s: %w", q.Symbol, err)
		}
		summary.Holdings = append(summary.Holdings, HoldingView{
			Symbol: q.Symbol,
			Name:   q.Name,
			Shares: shares,
			Price:  q.Price,
			Value:  value,
		})
	}

	total, err := snapshot.Cash.Add(snapshot.HoldingsValue)
	if err != nil {
		return nil, fmt.Errorf("failed to total account: %w", err)
	}
	summary.TotalValue = total
	return summary, nil
}

// IsRejection reports whether err is a trade or cash rejection caused by
// the caller's input rather than a fault.
func IsRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrUnknownSymbol) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrInsufficientShares) ||
		errors.Is(err, domain.ErrInvalidAmount)
}
