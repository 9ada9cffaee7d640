package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/domain"
)

// Currency is the currency every amount is shown in.
const Currency = money.USD

const timestampLayout = "2006-01-02 15:04:05"

// FormatMoney renders an amount to cents with round-half-even, e.g. $1,234.56.
func FormatMoney(amount domain.Decimal) string {
	cents, err := amount.MinorUnits(2)
	if err != nil {
		// too large for int64 cents
		rounded, rerr := amount.Round(2)
		if rerr != nil {
			return "$" + amount.String()
		}
		return "$" + rounded.String()
	}
	return money.New(cents, Currency).Display()
}

// WriteQuotes prints one line per quote.
func WriteQuotes(w io.Writer, quotes []domain.Quote) {
	for _, q := range quotes {
		fmt.Fprintln(w, formatQuote(q))
	}
}

func formatQuote(q domain.Quote) string {
	return fmt.Sprintf("%s (%s) - %s", q.Symbol, q.Name, FormatMoney(q.Price))
}

func formatHolding(h application.HoldingView) string {
	return fmt.Sprintf("%s (%s) - %s, Shares: %d, Value: %s",
		h.Symbol, h.Name, FormatMoney(h.Price), h.Shares, FormatMoney(h.Value))
}

func formatTrade(t domain.Trade) string {
	return fmt.Sprintf("%s: %s %d shares of %s at %s",
		t.Timestamp.Local().Format(timestampLayout), t.Kind, t.Quantity, t.Symbol, FormatMoney(t.UnitPrice))
}

func formatTime(t time.Time) string {
	return t.Local().Format(timestampLayout)
}
