package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/domain"
)

// TradingService defines the interface for trading operations
type TradingService interface {
	ListInstruments(ctx context.Context) ([]domain.Quote, error)
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetAccountSummary(ctx context.Context) (*application.AccountSummary, error)
	GetAccount(ctx context.Context, id string) (*application.AccountSummary, error)
	ListTrades(ctx context.Context) ([]domain.Trade, error)
	Buy(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error)
	Sell(ctx context.Context, symbol string, quantity int64) (*domain.Trade, error)
	ExecuteOrders(ctx context.Context, orders []application.OrderRequest) *application.ExecuteOrdersResult
	Deposit(ctx context.Context, amount domain.Decimal) (*application.AccountSummary, error)
	Withdraw(ctx context.Context, amount domain.Decimal) (*application.AccountSummary, error)
	Tick(ctx context.Context) ([]domain.Quote, error)
	Subscribe() (<-chan application.PriceTick, func())
}

type Handler struct {
	tradingService TradingService
}

func NewHandler(tradingService TradingService) *Handler {
	return &Handler{
		tradingService: tradingService,
	}
}

type OrderRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int64  `json:"quantity"`
}

type BatchOrderRequest struct {
	Orders []application.OrderRequest `json:"orders" binding:"required"`
}

type CashRequest struct {
	Amount domain.Decimal `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSymbol), errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientShares):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, msg string, err error, attrs ...any) {
	status := statusFor(err)
	attrs = append(attrs, "error", err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), msg, attrs...)
	} else {
		slog.InfoContext(c.Request.Context(), msg, attrs...)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) ListInstruments(c *gin.Context) {
	quotes, err := h.tradingService.ListInstruments(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list instruments", err)
		return
	}

	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) GetInstrument(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := h.tradingService.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		h.fail(c, "Failed to get instrument", err, "symbol", symbol)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *Handler) GetAccountSummary(c *gin.Context) {
	summary, err := h.tradingService.GetAccountSummary(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to summarize account", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetAccount(c *gin.Context) {
	accountID := c.Param("id")

	summary, err := h.tradingService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, "Failed to get account", err, "account_id", accountID)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListTrades(c *gin.Context) {
	trades, err := h.tradingService.ListTrades(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list trades", err)
		return
	}

	c.JSON(http.StatusOK, trades)
}

func (h *Handler) Buy(c *gin.Context) {
	h.placeOrder(c, application.OrderSideBuy)
}

func (h *Handler) Sell(c *gin.Context) {
	h.placeOrder(c, application.OrderSideSell)
}

func (h *Handler) placeOrder(c *gin.Context, side application.OrderSide) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var trade *domain.Trade
	var err error
	if side == application.OrderSideBuy {
		trade, err = h.tradingService.Buy(c.Request.Context(), req.Symbol, req.Quantity)
	} else {
		trade, err = h.tradingService.Sell(c.Request.Context(), req.Symbol, req.Quantity)
	}
	if err != nil {
		h.fail(c, "Order rejected", err, "side", side, "symbol", req.Symbol, "quantity", req.Quantity)
		return
	}

	c.JSON(http.StatusCreated, trade)
}

func (h *Handler) ExecuteOrders(c *gin.Context) {
	var req BatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result := h.tradingService.ExecuteOrders(c.Request.Context(), req.Orders)

	status := http.StatusOK
	if len(result.Successful) == 0 && len(result.Failed) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (h *Handler) Deposit(c *gin.Context) {
	h.moveCash(c, h.tradingService.Deposit)
}

func (h *Handler) Withdraw(c *gin.Context) {
	h.moveCash(c, h.tradingService.Withdraw)
}

func (h *Handler) moveCash(c *gin.Context, move func(context.Context, domain.Decimal) (*application.AccountSummary, error)) {
	var req CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := move(c.Request.Context(), req.Amount)
	if err != nil {
		h.fail(c, "Cash movement rejected", err, "amount", req.Amount.String())
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Tick(c *gin.Context) {
	quotes, err := h.tradingService.Tick(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to tick market", err)
		return
	}

	c.JSON(http.StatusOK, quotes)
}
