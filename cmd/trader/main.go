package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/config"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/marketdata"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/persistence/memory"
	httpHandler "github.com/jmanzanog/paper-trader/internal/interfaces/http"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}
	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads .env if present, then the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newTradingService wires the seed market, the account store and the service.
func newTradingService(cfg *config.Config, accountName string) (*application.TradingService, error) {
	market, err := marketdata.NewDefaultMarket(cfg.MarketSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	service, err := application.NewTradingService(memory.NewAccountRepository(), market, accountName, cfg.StartingCash)
	if err != nil {
		return nil, fmt.Errorf("failed to create trading service: %w", err)
	}
	return service, nil
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, tradingService *application.TradingService) *http.Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	handler := httpHandler.NewHandler(tradingService)
	httpHandler.SetupRoutes(router, handler)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// App wraps the server components for easier testing
type App struct {
	Server        *http.Server
	PriceUpdater  *application.PriceUpdater
	CancelContext context.CancelFunc
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if a.PriceUpdater != nil {
		a.PriceUpdater.Stop()
	}
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

func newCommander(topLevel *flag.FlagSet, name string) *subcommands.Commander {
	commander := subcommands.NewCommander(topLevel, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(newPlayCmd(os.Stdin, os.Stdout), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&quotesCmd{out: os.Stdout}, "")
	return commander
}

func main() {
	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]))
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
