package application

import (
	"sync"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

// PriceTick is the market state right after one random walk step.
type PriceTick struct {
	Quotes    []domain.Quote `json:"quotes"`
	Timestamp time.Time      `json:"timestamp"`
}

// subscriberBuffer is how many ticks a slow subscriber may lag before
// ticks are dropped for it.
const subscriberBuffer = 8

// PriceFeed fans price ticks out to subscribers. Publishing never blocks.
type PriceFeed struct {
	mu          sync.RWMutex
	subscribers map[chan PriceTick]struct{}
}

func NewPriceFeed() *PriceFeed {
	return &PriceFeed{
		subscribers: make(map[chan PriceTick]struct{}),
	}
}

func (f *PriceFeed) Subscribe() (<-chan PriceTick, func()) {
	ch := make(chan PriceTick, subscriberBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			close(ch)
			f.mu.Unlock()
		})
	}
}

func (f *PriceFeed) Publish(tick PriceTick) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subscribers {
		select {
		case ch <- tick:
		default:
		}
	}
}

func (f *PriceFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}
