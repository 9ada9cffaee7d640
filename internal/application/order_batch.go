package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderRequest represents a single order in a batch.
type OrderRequest struct {
	Side     OrderSide `json:"side"`
	Symbol   string    `json:"symbol"`
	Quantity int64     `json:"quantity"`
}

// OrderResult represents the outcome of one order of a batch.
type OrderResult struct {
	Index int           `json:"index"`
	Order OrderRequest  `json:"order"`
	Trade *domain.Trade `json:"trade,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ExecuteOrdersResult represents the result of a batch of orders.
type ExecuteOrdersResult struct {
	Successful []OrderResult `json:"successful"`
	Failed     []OrderResult `json:"failed"`
}

// ExecuteOrders runs the orders one after another in request order, so a
// sell may use shares bought earlier in the same batch. Each order is atomic
// on its own; a failed order does not undo the ones before it.
func (s *TradingService) ExecuteOrders(ctx context.Context, orders []OrderRequest) *ExecuteOrdersResult {
	result := &ExecuteOrdersResult{
		Successful: make([]OrderResult, 0),
		Failed:     make([]OrderResult, 0),
	}

	if len(orders) == 0 {
		return result
	}

	slog.InfoContext(ctx, "Executing order batch", "count", len(orders))

	for i, order := range orders {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, OrderResult{Index: i, Order: order, Error: err.Error()})
			continue
		}

		var trade *domain.Trade
		var err error
		switch OrderSide(strings.ToLower(string(order.Side))) {
		case OrderSideBuy:
			trade, err = s.Buy(ctx, order.Symbol, order.Quantity)
		case OrderSideSell:
			trade, err = s.Sell(ctx, order.Symbol, order.Quantity)
		default:
			err = fmt.Errorf("unsupported order side %q", order.Side)
		}

		if err != nil {
			result.Failed = append(result.Failed, OrderResult{Index: i, Order: order, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, OrderResult{Index: i, Order: order, Trade: trade})
	}

	return result
}
