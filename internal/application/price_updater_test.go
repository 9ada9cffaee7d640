package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
	"github.com/stretchr/testify/assert"
)

type mockMarketTicker struct {
	mu        sync.Mutex
	tickFunc  func(ctx context.Context) ([]domain.Quote, error)
	callCount int
}

func (m *mockMarketTicker) Tick(ctx context.Context) ([]domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.tickFunc != nil {
		return m.tickFunc(ctx)
	}
	return nil, nil
}

func (m *mockMarketTicker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func TestPriceUpdater_Start(t *testing.T) {
	t.Run("Ticks on interval", func(t *testing.T) {
		mockTicker := &mockMarketTicker{}
		updater := NewPriceUpdater(mockTicker, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go updater.Start(ctx)

		assert.Eventually(t, func() bool { return mockTicker.CallCount() >= 3 }, time.Second, 5*time.Millisecond)
		updater.Stop()
	})

	t.Run("Stop is safe to call twice", func(t *testing.T) {
		updater := NewPriceUpdater(&mockMarketTicker{}, 100*time.Millisecond)

		done := make(chan struct{})
		go func() {
			updater.Start(context.Background())
			close(done)
		}()

		updater.Stop()
		updater.Stop()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("updater did not stop")
		}
	})

	t.Run("Keeps ticking after an error", func(t *testing.T) {
		mockTicker := &mockMarketTicker{
			tickFunc: func(ctx context.Context) ([]domain.Quote, error) {
				return nil, errors.New("walk failed")
			},
		}
		updater := NewPriceUpdater(mockTicker, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go updater.Start(ctx)
		assert.Eventually(t, func() bool { return mockTicker.CallCount() >= 2 }, time.Second, 5*time.Millisecond)
		updater.Stop()
	})

	t.Run("Stops on context cancellation", func(t *testing.T) {
		updater := NewPriceUpdater(&mockMarketTicker{}, 100*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			updater.Start(ctx)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("updater ignored cancellation")
		}
	})
}
