package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/domain"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/marketdata"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func newTestService(t *testing.T, draw float64) *application.TradingService {
	t.Helper()
	market, err := marketdata.NewMarket(fixedSource(draw), marketdata.DefaultListings)
	require.NoError(t, err)
	service, err := application.NewTradingService(memory.NewAccountRepository(), market, "alice", domain.MustDecimal("10000.00"))
	require.NoError(t, err)
	return service
}

func runScript(t *testing.T, service TradingService, script string) string {
	t.Helper()
	var out bytes.Buffer
	session := NewSession(strings.NewReader(script), &out)
	require.NoError(t, session.Run(context.Background(), service, "alice"))
	return out.String()
}

func TestSession_BuyThenViewPortfolio(t *testing.T) {
	service := newTestService(t, 0.5)

	out := runScript(t, service, "1\n3\naapl\n10\n2\n6\n")

	assert.Contains(t, out, "Welcome to the Stock Trading Platform, alice!")
	assert.Contains(t, out, "AAPL (Apple Inc.) - $170.00")
	assert.Contains(t, out, "Successfully bought 10 shares of AAPL at $170.00")
	assert.Contains(t, out, "User: alice")
	assert.Contains(t, out, "Cash Balance: $8,300.00")
	assert.Contains(t, out, "AAPL (Apple Inc.) - $170.00, Shares: 10, Value: $1,700.00")
	assert.Contains(t, out, "Total Portfolio Value: $1,700.00")
	assert.Contains(t, out, "BUY 10 shares of AAPL at $170.00")
	assert.Contains(t, out, "Goodbye!")
}

func TestSession_EmptyPortfolio(t *testing.T) {
	out := runScript(t, newTestService(t, 0.5), "2\n6\n")

	assert.Contains(t, out, "No holdings.")
	assert.Contains(t, out, "No transactions yet.")
}

func TestSession_Rejections(t *testing.T) {
	service := newTestService(t, 0.5)

	out := runScript(t, service, "3\nGOOGL\n4\n4\nAAPL\n1\n3\nZZZZ\n1\n3\nAAPL\n0\n6\n")

	assert.Contains(t, out, "Buy failed: not enough cash.")
	assert.Contains(t, out, "Sell failed: not enough shares owned.")
	assert.Contains(t, out, "Buy failed: unknown stock symbol.")
	assert.Contains(t, out, "Buy failed: number of shares must be positive.")

	summary, err := service.GetAccountSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Cash.Equal(domain.MustDecimal("10000")))
	assert.Empty(t, summary.Trades)
}

func TestSession_InvalidInput(t *testing.T) {
	out := runScript(t, newTestService(t, 0.5), "abc\n9\n3\nAAPL\nten\n6\n")

	assert.Contains(t, out, "Invalid input. Try again.")
	assert.Contains(t, out, "Invalid choice. Try again.")
	assert.Contains(t, out, "Invalid number of shares. Try again.")
}

func TestSession_UpdatePrices(t *testing.T) {
	service := newTestService(t, 1)

	out := runScript(t, service, "5\n1\n6\n")

	assert.Contains(t, out, "Market prices updated at")
	assert.Contains(t, out, "AAPL (Apple Inc.) - $178.50")
}

func TestSession_EndOfInput(t *testing.T) {
	testCases := []struct {
		name   string
		script string
	}{
		{"at menu", "1\n"},
		{"at symbol prompt", "3\n"},
		{"at quantity prompt", "4\nAAPL\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := runScript(t, newTestService(t, 0.5), tc.script)
			assert.NotContains(t, out, "Goodbye!")
		})
	}
}

type failingService struct {
	TradingService
}

func (failingService) ListInstruments(ctx context.Context) ([]domain.Quote, error) {
	return nil, errors.New("market closed")
}

func TestSession_ServiceFailure(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(strings.NewReader("1\n"), &out)

	err := session.Run(context.Background(), failingService{}, "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market closed")
}

func TestSession_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(strings.NewReader("1\n"), &bytes.Buffer{})
	assert.ErrorIs(t, session.Run(ctx, newTestService(t, 0.5), "alice"), context.Canceled)
}

func TestSession_Prompt(t *testing.T) {
	var out bytes.Buffer
	session := NewSession(strings.NewReader("  bob  \n"), &out)

	name, ok := session.Prompt("Enter your name: ")
	assert.True(t, ok)
	assert.Equal(t, "bob", name)
	assert.Equal(t, "Enter your name: ", out.String())

	_, ok = session.Prompt("again: ")
	assert.False(t, ok)
}
