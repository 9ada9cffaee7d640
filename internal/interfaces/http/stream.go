package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jmanzanog/paper-trader/internal/application"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the simulator serves local clients only
	},
}

// StreamPrices upgrades to a websocket and pushes one message per market
// tick, starting with the current quotes.
func (h *Handler) StreamPrices(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticks, unsubscribe := h.tradingService.Subscribe()
	defer unsubscribe()

	quotes, err := h.tradingService.ListInstruments(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list instruments for stream", "error", err)
		return
	}
	if err := writeTick(conn, application.PriceTick{Quotes: quotes, Timestamp: time.Now()}); err != nil {
		slog.InfoContext(ctx, "WebSocket client gone", "error", err)
		return
	}

	slog.InfoContext(ctx, "Price stream client connected", "remote", c.Request.RemoteAddr)

	// The read loop only exists to notice the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			if err := writeTick(conn, tick); err != nil {
				slog.InfoContext(ctx, "WebSocket write failed", "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			slog.InfoContext(ctx, "Price stream client disconnected")
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeTick(conn *websocket.Conn, tick application.PriceTick) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(tick)
}
