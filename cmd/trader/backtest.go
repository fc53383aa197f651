package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hgreenfield1/Kalshi/config"
	"github.com/hgreenfield1/Kalshi/internal/application/backtest"
	"github.com/hgreenfield1/Kalshi/internal/application/engine"
	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
)

// runBacktest: ticker → mercado → partido → timestamps → prefetch → replay → store → print.
func runBacktest(ctx context.Context, cfg *config.Config, svc engine.Services, reporter ports.Reporter, ticker string, strategies []strategy.Strategy) error {
	slog.Info("=== BACKTEST MODE ===", "ticker", ticker, "strategies", len(strategies))

	info, err := domain.ParseTicker(ticker)
	if err != nil {
		return err
	}

	market, err := svc.Exchange.GetMarket(ctx, ticker)
	if err != nil {
		return fmt.Errorf("runBacktest: market: %w", err)
	}

	game, err := svc.Locator.FindGame(ctx, info)
	if err != nil {
		return fmt.Errorf("runBacktest: locate game: %w", err)
	}
	slog.Info("game located", "game_id", game.ID, "home", game.HomeTeam, "away", game.AwayTeam, "status", game.Status)

	driver := backtest.New(svc, backtest.Config{
		Workers:       cfg.Backtest.Workers,
		TickInterval:  cfg.TickInterval(),
		PregameWindow: cfg.PregameWindow(),
		InitialCash:   initialCash(cfg),
		Model:         strategy.NewAlphaDecay(cfg.Model.AlphaT, cfg.Model.AlphaProb),
		Store:         svc.Store != nil,
	})

	results, err := driver.Run(ctx, backtest.Job{
		Market:     market,
		Info:       info,
		Game:       game,
		Strategies: strategies,
	})
	for _, r := range results {
		if perr := reporter.PrintBacktest(r); perr != nil {
			slog.Warn("reporter error", "err", perr)
		}
	}
	if err != nil {
		return err
	}

	slog.Info("backtest complete", "sessions", len(results))
	return nil
}
