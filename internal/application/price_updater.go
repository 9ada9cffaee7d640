package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

type MarketTicker interface {
	Tick(ctx context.Context) ([]domain.Quote, error)
}

// PriceUpdater ticks the market on a fixed interval.
type PriceUpdater struct {
	ticker   MarketTicker
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewPriceUpdater(ticker MarketTicker, interval time.Duration) *PriceUpdater {
	return &PriceUpdater{
		ticker:   ticker,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (u *PriceUpdater) Start(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	slog.Info("Price updater started", "interval", u.interval)

	for {
		select {
		case <-ticker.C:
			quotes, err := u.ticker.Tick(ctx)
			if err != nil {
				slog.Error("Error ticking market", "error", err)
			} else {
				slog.Debug("Market ticked", "instruments", len(quotes))
			}
		case <-u.stopChan:
			slog.Info("Price updater stopped")
			return
		case <-ctx.Done():
			slog.Info("Price updater stopped due to context cancellation")
			return
		}
	}
}

func (u *PriceUpdater) Stop() {
	u.stopOnce.Do(func() { close(u.stopChan) })
}
