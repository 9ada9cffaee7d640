package domain

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource always draws the same value.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// sequenceSource cycles through a fixed list of draws.
type sequenceSource struct {
	draws []float64
	next  int
}

func (s *sequenceSource) Float64() float64 {
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}

func newTestMarket(t *testing.T, random RandomSource) *Market {
	t.Helper()

	seed := []struct {
		symbol, name, price string
	}{
		{"AAPL", "Apple Inc.", "170.00"},
		{"GOOGL", "Alphabet Inc.", "2800.00"},
		{"MSFT", "Microsoft Corp.", "320.00"},
		{"TSLA", "Tesla Inc.", "700.00"},
	}

	instruments := make([]*Instrument, 0, len(seed))
	for _, s := range seed {
		inst, err := NewInstrument(s.symbol, s.name, MustDecimal(s.price))
		require.NoError(t, err)
		instruments = append(instruments, inst)
	}

	market, err := NewMarket(random, instruments...)
	require.NoError(t, err)
	return market
}

func walk(t *testing.T, market *Market) []Quote {
	t.Helper()
	quotes, err := market.ApplyRandomWalk()
	require.NoError(t, err)
	return quotes
}

func TestNewInstrument_Validation(t *testing.T) {
	_, err := NewInstrument("", "Nothing", MustDecimal("10"))
	assert.ErrorIs(t, err, ErrInvalidInstrument)

	_, err = NewInstrument("PENNY", "Penny Corp.", MustDecimal("0.001"))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	inst, err := NewInstrument(" aapl ", "Apple Inc.", MustDecimal("0.01"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", inst.Symbol())
}

func TestNewMarket_RejectsDuplicateSymbols(t *testing.T) {
	a, _ := NewInstrument("AAPL", "Apple Inc.", MustDecimal("170"))
	b, _ := NewInstrument("aapl", "Apple again", MustDecimal("171"))

	_, err := NewMarket(fixedSource(0.5), a, b)
	assert.ErrorIs(t, err, ErrDuplicateInstrument)

	_, err = NewMarket(nil, a)
	assert.Error(t, err)
}

func TestMarket_Lookup(t *testing.T) {
	market := newTestMarket(t, fixedSource(0.5))

	t.Run("Is case insensitive and returns the same instrument", func(t *testing.T) {
		upper, err := market.Lookup("GOOGL")
		require.NoError(t, err)
		lower, err := market.Lookup("googl")
		require.NoError(t, err)
		mixed, err := market.Lookup("GoOgL")
		require.NoError(t, err)

		assert.Same(t, upper, lower)
		assert.Same(t, upper, mixed)
		assert.Equal(t, "Alphabet Inc.", upper.Name())
	})

	t.Run("Unknown symbol", func(t *testing.T) {
		_, err := market.Lookup("ZZZZ")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
	})
}

func TestMarket_ListAllKeepsInsertionOrder(t *testing.T) {
	market := newTestMarket(t, fixedSource(0.5))

	var symbols []string
	for _, inst := range market.ListAll() {
		symbols = append(symbols, inst.Symbol())
	}
	assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT", "TSLA"}, symbols)

	quotes := market.Quotes()
	require.Len(t, quotes, 4)
	assert.Equal(t, "TSLA", quotes[3].Symbol)
	assert.True(t, quotes[3].Price.Equal(MustDecimal("700")))
}

func TestMarket_ApplyRandomWalk(t *testing.T) {
	t.Run("Midpoint draw leaves prices unchanged", func(t *testing.T) {
		market := newTestMarket(t, fixedSource(0.5))
		walk(t, market)

		inst, _ := market.Lookup("AAPL")
		assert.True(t, inst.Price().Equal(MustDecimal("170")), "got %s", inst.Price())
	})

	t.Run("Lowest draw moves down five percent", func(t *testing.T) {
		market := newTestMarket(t, fixedSource(0))
		walk(t, market)

		inst, _ := market.Lookup("MSFT")
		assert.True(t, inst.Price().Equal(MustDecimal("304")), "got %s", inst.Price())
	})

	t.Run("Draws are independent per instrument", func(t *testing.T) {
		market := newTestMarket(t, &sequenceSource{draws: []float64{1, 0, 0.5, 0.75}})
		quotes := walk(t, market)
		assert.Equal(t, market.Quotes(), quotes)

		expected := map[string]string{
			"AAPL":  "178.5",
			"GOOGL": "2660",
			"MSFT":  "320",
			"TSLA":  "717.5",
		}
		for symbol, price := range expected {
			inst, _ := market.Lookup(symbol)
			assert.True(t, inst.Price().Equal(MustDecimal(price)), "%s: got %s", symbol, inst.Price())
		}
	})
}

func TestMarket_ConcurrentWalksReturnOwnQuotes(t *testing.T) {
	market := newTestMarket(t, fixedSource(1))

	const walks = 20
	results := make(chan Quote, walks)
	var wg sync.WaitGroup
	for i := 0; i < walks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quotes, err := market.ApplyRandomWalk()
			if assert.NoError(t, err) {
				results <- quotes[0]
			}
		}()
	}
	wg.Wait()
	close(results)

	// Every walk must report a distinct step of the same compounding path.
	seen := make(map[string]bool)
	for q := range results {
		assert.False(t, seen[q.Price.String()], "price %s reported twice", q.Price)
		seen[q.Price.String()] = true
	}
	assert.Len(t, seen, walks)
}

func TestMarket_PriceFloor(t *testing.T) {
	market := newTestMarket(t, fixedSource(0))

	for i := 0; i < 1000; i++ {
		walk(t, market)
	}

	for _, inst := range market.ListAll() {
		assert.True(t, inst.Price().Equal(PriceFloor), "%s: got %s", inst.Symbol(), inst.Price())
	}
}

func TestMarket_CompoundsMaximumStep(t *testing.T) {
	market := newTestMarket(t, fixedSource(1))

	const ticks = 1000
	for i := 0; i < ticks; i++ {
		walk(t, market)
	}

	expected := MustDecimal("170.00")
	factor := MustDecimal("1.05")
	for i := 0; i < ticks; i++ {
		var err error
		expected, err = expected.Mul(factor)
		require.NoError(t, err)
	}

	inst, err := market.Lookup("AAPL")
	require.NoError(t, err)
	assert.True(t, inst.Price().Equal(expected), "expected %s, got %s", expected, inst.Price())
	assert.InEpsilon(t, 170*math.Pow(1.05, ticks), inst.Price().Float64(), 1e-9)
}

func TestPriceBook(t *testing.T) {
	market := newTestMarket(t, fixedSource(1))
	book, err := NewPriceBook(market.Quotes())
	require.NoError(t, err)

	walk(t, market)

	inst, err := book.Lookup("aapl")
	require.NoError(t, err)
	assert.True(t, inst.Price().Equal(MustDecimal("170")), "book moved with the market: %s", inst.Price())

	_, err = book.Lookup("ZZZZ")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}
