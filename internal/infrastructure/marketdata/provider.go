// Package marketdata provides the synthetic market: the listed instruments
// a session starts with and the random source that drives price walks.
package marketdata

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

type Listing struct {
	Symbol string
	Name   string
	Price  string
}

// DefaultListings is the instrument set every session starts with.
var DefaultListings = []Listing{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: "170.00"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: "2800.00"},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: "320.00"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: "700.00"},
}

// RandomSource is a seedable, goroutine-safe domain.RandomSource.
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a source seeded with seed, or with the wall clock
// when seed is zero.
func NewRandomSource(seed int64) *RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSource{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

func (s *RandomSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewMarket builds a market from listings, driven by random.
func NewMarket(random domain.RandomSource, listings []Listing) (*domain.Market, error) {
	instruments := make([]*domain.Instrument, 0, len(listings))
	for _, l := range listings {
		price, err := domain.NewDecimalFromString(l.Price)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.Symbol, err)
		}
		inst, err := domain.NewInstrument(l.Symbol, l.Name, price)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.Symbol, err)
		}
		instruments = append(instruments, inst)
	}
	return domain.NewMarket(random, instruments...)
}

// NewDefaultMarket builds the default listings driven by a source seeded
// with seed.
func NewDefaultMarket(seed int64) (*domain.Market, error) {
	return NewMarket(NewRandomSource(seed), DefaultListings)
}
