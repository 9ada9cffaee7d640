package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/jmanzanog/paper-trader/internal/application"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/config"
	"github.com/jmanzanog/paper-trader/internal/infrastructure/marketdata"
	"github.com/jmanzanog/paper-trader/internal/interfaces/cli"
)

func configureLogging(cfg *config.Config, w io.Writer) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	setupLogger(level, w)
}

// playCmd runs the interactive menu.
type playCmd struct {
	name string
	in   io.Reader
	out  io.Writer
}

func newPlayCmd(in io.Reader, out io.Writer) *playCmd {
	return &playCmd{in: in, out: out}
}

func (*playCmd) Name() string     { return "play" }
func (*playCmd) Synopsis() string { return "trade interactively from the terminal" }
func (*playCmd) Usage() string {
	return `trader play [-name <account name>]

  Opens the text menu. Without -name or ACCOUNT_NAME the name is asked for.
`
}

func (p *playCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Display name of the account (overrides ACCOUNT_NAME).")
}

func (p *playCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	configureLogging(cfg, os.Stderr)

	session := cli.NewSession(p.in, p.out)

	name := p.name
	if name == "" && os.Getenv("ACCOUNT_NAME") == "" {
		reply, ok := session.Prompt("Enter your name: ")
		if !ok {
			return subcommands.ExitSuccess
		}
		name = reply
	}
	if name == "" {
		name = cfg.AccountName
	}

	service, err := newTradingService(cfg, name)
	if err != nil {
		slog.Error("Application error", "error", err)
		return subcommands.ExitFailure
	}

	if err := session.Run(ctx, service, name); err != nil {
		slog.Error("Session ended with error", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serveCmd exposes the engine over HTTP.
type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the trading API and price stream over HTTP" }
func (*serveCmd) Usage() string {
	return `trader serve

  Listens on SERVER_HOST:SERVER_PORT until SIGINT or SIGTERM. A positive
  AUTO_TICK_INTERVAL moves prices on its own.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := serve(ctx); err != nil {
		slog.Error("Application error", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve contains the server lifecycle without os.Exit calls
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg, os.Stdout)

	tradingService, err := newTradingService(cfg, cfg.AccountName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := &App{
		Server:        buildServer(cfg, tradingService),
		CancelContext: cancel,
	}

	if cfg.AutoTickInterval > 0 {
		app.PriceUpdater = application.NewPriceUpdater(tradingService, cfg.AutoTickInterval)
		go app.PriceUpdater.Start(ctx)
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

// quotesCmd prints the market once.
type quotesCmd struct {
	ticks int
	out   io.Writer
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "print the opening market" }
func (*quotesCmd) Usage() string {
	return `trader quotes [-ticks <n>]

  Prints every listed instrument, optionally after n random walk steps
  seeded from MARKET_SEED.
`
}

func (q *quotesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&q.ticks, "ticks", 0, "Number of price walk steps to apply before printing.")
}

func (q *quotesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if q.ticks < 0 {
		fmt.Fprintln(os.Stderr, "ticks must not be negative")
		return subcommands.ExitUsageError
	}

	market, err := marketdata.NewDefaultMarket(cfg.MarketSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	quotes := market.Quotes()
	for i := 0; i < q.ticks; i++ {
		if quotes, err = market.ApplyRandomWalk(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	cli.WriteQuotes(q.out, quotes)
	return subcommands.ExitSuccess
}
