package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hgreenfield1/Kalshi/config"
	"github.com/hgreenfield1/Kalshi/internal/adapters/kalshi"
	"github.com/hgreenfield1/Kalshi/internal/adapters/mlb"
	"github.com/hgreenfield1/Kalshi/internal/adapters/notify"
	"github.com/hgreenfield1/Kalshi/internal/adapters/storage"
	"github.com/hgreenfield1/Kalshi/internal/adapters/winprob"
	"github.com/hgreenfield1/Kalshi/internal/application/engine"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	mode := flag.String("mode", "live", "live | backtest | report")
	ticker := flag.String("ticker", "", "market ticker (backtest mode)")
	strategyName := flag.String("strategy", "", "strategy name or 'all' (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	noStore := flag.Bool("no-store", false, "do not persist predictions")
	trades := flag.Bool("trades", false, "print the full trade log of each session")
	purge := flag.String("purge", "", "report mode: delete predictions of <strategy>@<version> before reporting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *strategyName != "" {
		cfg.Strategy.Name = *strategyName
	}
	setupLogger(cfg.Log)

	slog.Info("kalshi trader starting",
		"config", *configPath,
		"mode", *mode,
		"env", cfg.Kalshi.Env,
		"strategy", cfg.Strategy.Name,
		"store", !*noStore,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reporter := notify.NewConsole(*trades)

	var store *storage.SQLiteStorage
	if !*noStore || *mode == "report" {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *mode == "report" {
		if err := runReport(ctx, store, reporter, *purge); err != nil {
			slog.Error("report failed", "err", err)
			os.Exit(1)
		}
		return
	}

	strategies, err := selectStrategies(cfg.Strategy)
	if err != nil {
		slog.Error("invalid strategy", "err", err)
		os.Exit(1)
	}

	d, err := buildDeps(cfg)
	if err != nil {
		slog.Error("failed to build adapters", "err", err)
		os.Exit(1)
	}
	if store != nil {
		d.svc.Store = store
	}

	switch *mode {
	case "backtest":
		if *ticker == "" {
			slog.Error("backtest mode requires -ticker")
			os.Exit(1)
		}
		err = runBacktest(ctx, cfg, d.svc, reporter, *ticker, strategies)
	case "live":
		err = runLive(ctx, cfg, d, reporter, strategies)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil && ctx.Err() == nil {
		slog.Error("trader exited with error", "mode", *mode, "err", err)
		os.Exit(1)
	}

	slog.Info("kalshi trader stopped cleanly")
}

// deps son los adapters compartidos por live y backtest.
type deps struct {
	svc    engine.Services
	kalshi *kalshi.Client
	creds  *kalshi.Credentials // nil sin credenciales: REST público, sin websocket
}

func buildDeps(cfg *config.Config) (deps, error) {
	var creds *kalshi.Credentials
	if cfg.Kalshi.KeyID != "" || cfg.Kalshi.KeyFile != "" {
		c, err := kalshi.LoadCredentials(cfg.Kalshi.KeyID, cfg.Kalshi.KeyFile)
		if err != nil {
			return deps{}, err
		}
		creds = c
	}

	client := kalshi.NewClient(kalshi.Config{
		Env:        cfg.Kalshi.Env,
		HTTPBase:   cfg.Kalshi.HTTPBase,
		WSURL:      cfg.Kalshi.WSURL,
		MinSpacing: cfg.KalshiSpacing(),
	}, creds, slog.Default())

	games := mlb.NewClient(mlb.Config{
		BaseURL:    cfg.MLB.BaseURL,
		MinSpacing: cfg.MLBSpacing(),
	}, slog.Default())

	table, err := winprob.Load(cfg.MLB.WinProbTable)
	if err != nil {
		return deps{}, err
	}
	slog.Info("win probability table loaded", "path", cfg.MLB.WinProbTable, "rows", table.Len())

	return deps{
		svc: engine.Services{
			Exchange: client,
			Games:    games,
			Locator:  games,
			Table:    table,
			Logger:   slog.Default(),
		},
		kalshi: client,
		creds:  creds,
	}, nil
}

// selectStrategies resuelve el nombre configurado contra el registry.
// "all" devuelve los tres presets.
func selectStrategies(cfg config.StrategyConfig) ([]strategy.Strategy, error) {
	reg := strategy.DefaultRegistry()
	names := []string{cfg.Name}
	if cfg.Name == "all" {
		names = reg.Names()
	}

	out := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		s, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, reg.Names())
		}
		if p, isPolicy := s.(*strategy.Policy); isPolicy && (cfg.MinPosition != 0 || cfg.MaxPosition != 0) {
			s = strategy.WithBounds(p, cfg.MinPosition, cfg.MaxPosition)
		}
		out = append(out, s)
	}
	return out, nil
}

func initialCash(cfg *config.Config) decimal.Decimal {
	return decimal.NewFromFloat(cfg.Strategy.InitialCash)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
