// Package cli is the interactive text front end of the simulator. It holds
// no trading state: every screen is rendered from the service's answers.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/domain"
)

// TradingService is the part of the application the menu drives.
type TradingService interface {
	ListInstruments(ctx context.Context) ([]domain.Quote, error)
	GetAccountSummary(ctx context.Context) (*application.AccountSummary, error)
	Buy(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error)
	Sell(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error)
	Tick(ctx context.Context) ([]domain.Quote, error)
}

const (
	choiceMarket = iota + 1
	choicePortfolio
	choiceBuy
	choiceSell
	choiceTick
	choiceExit
)

type Session struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewScanner(in), out: out}
}

// Prompt writes label and returns the next trimmed input line. ok is false
// once input is exhausted.
func (s *Session) Prompt(label string) (line string, ok bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// Run shows the menu until the user exits, input ends or ctx is done.
func (s *Session) Run(ctx context.Context, service TradingService, userName string) error {
	fmt.Fprintf(s.out, "\nWelcome to the Stock Trading Platform, %s!\n", userName)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		line, ok := s.Prompt("Enter your choice: ")
		if !ok {
			return s.in.Err()
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid input. Try again.")
			continue
		}

		switch choice {
		case choiceMarket:
			err = s.showMarket(ctx, service)
		case choicePortfolio:
			err = s.showPortfolio(ctx, service)
		case choiceBuy:
			err = s.trade(ctx, service, application.OrderSideBuy)
		case choiceSell:
			err = s.trade(ctx, service, application.OrderSideSell)
		case choiceTick:
			err = s.tick(ctx, service)
		case choiceExit:
			fmt.Fprintln(s.out, "Thank you for using the Stock Trading Platform. Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Try again.")
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.out, "\n-----------------------------")
	fmt.Fprintln(s.out, "1. View Market Data")
	fmt.Fprintln(s.out, "2. View Portfolio")
	fmt.Fprintln(s.out, "3. Buy Stock")
	fmt.Fprintln(s.out, "4. Sell Stock")
	fmt.Fprintln(s.out, "5. Update Market Prices")
	fmt.Fprintln(s.out, "6. Exit")
}

func (s *Session) showMarket(ctx context.Context, service TradingService) error {
	quotes, err := service.ListInstruments(ctx)
	if err != nil {
		return fmt.Errorf("list instruments: %w", err)
	}

	fmt.Fprintln(s.out, "\n--- Market Data ---")
	WriteQuotes(s.out, quotes)
	return nil
}

func (s *Session) showHoldings(summary *application.AccountSummary) {
	fmt.Fprintln(s.out, "\n--- Portfolio ---")
	if len(summary.Holdings) == 0 {
		fmt.Fprintln(s.out, "No holdings.")
		return
	}
	for _, h := range summary.Holdings {
		fmt.Fprintln(s.out, formatHolding(h))
	}
	fmt.Fprintf(s.out, "Total Portfolio Value: %s\n", FormatMoney(summary.HoldingsValue))
}

func (s *Session) showPortfolio(ctx context.Context, service TradingService) error {
	summary, err := service.GetAccountSummary(ctx)
	if err != nil {
		return fmt.Errorf("account summary: %w", err)
	}

	fmt.Fprintf(s.out, "\nUser: %s\n", summary.Name)
	fmt.Fprintf(s.out, "Cash Balance: %s\n", FormatMoney(summary.Cash))
	s.showHoldings(summary)
	fmt.Fprintf(s.out, "Account Value: %s\n", FormatMoney(summary.TotalValue))

	fmt.Fprintln(s.out, "\n--- Transaction History ---")
	if len(summary.Trades) == 0 {
		fmt.Fprintln(s.out, "No transactions yet.")
		return nil
	}
	for _, t := range summary.Trades {
		fmt.Fprintln(s.out, formatTrade(t))
	}
	return nil
}

func (s *Session) trade(ctx context.Context, service TradingService, side application.OrderSide) error {
	verb := "buy"
	if side == application.OrderSideSell {
		verb = "sell"
		summary, err := service.GetAccountSummary(ctx)
		if err != nil {
			return fmt.Errorf("account summary: %w", err)
		}
		s.showHoldings(summary)
	} else if err := s.showMarket(ctx, service); err != nil {
		return err
	}

	symbol, ok := s.Prompt(fmt.Sprintf("Enter stock symbol to %s: ", verb))
	if !ok {
		return io.EOF
	}
	symbol = strings.ToUpper(symbol)

	raw, ok := s.Prompt("Enter number of shares: ")
	if !ok {
		return io.EOF
	}
	quantity, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid number of shares. Try again.")
		return nil
	}

	var trade *domain.Trade
	if side == application.OrderSideBuy {
		trade, err = service.Buy(ctx, symbol, quantity)
	} else {
		trade, err = service.Sell(ctx, symbol, quantity)
	}

	switch {
	case err == nil:
		past := "bought"
		if side == application.OrderSideSell {
			past = "sold"
		}
		fmt.Fprintf(s.out, "Successfully %s %d shares of %s at %s\n", past, trade.Quantity, trade.Symbol, FormatMoney(trade.UnitPrice))
	case application.IsRejection(err):
		fmt.Fprintf(s.out, "%s failed: %s.\n", strings.ToUpper(verb[:1])+verb[1:], rejectionReason(err))
	default:
		return err
	}
	return nil
}

func (s *Session) tick(ctx context.Context, service TradingService) error {
	if _, err := service.Tick(ctx); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	slog.DebugContext(ctx, "Market ticked from menu")
	fmt.Fprintf(s.out, "Market prices updated at %s!\n", formatTime(time.Now()))
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "number of shares must be positive"
	case errors.Is(err, domain.ErrUnknownSymbol):
		return "unknown stock symbol"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "not enough cash"
	case errors.Is(err, domain.ErrInsufficientShares):
		return "not enough shares owned"
	default:
		return err.Error()
	}
}
