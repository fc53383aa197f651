package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hgreenfield1/Kalshi/config"
	"github.com/hgreenfield1/Kalshi/internal/adapters/kalshi"
	"github.com/hgreenfield1/Kalshi/internal/adapters/metrics"
	"github.com/hgreenfield1/Kalshi/internal/application/engine"
	"github.com/hgreenfield1/Kalshi/internal/application/feed"
	"github.com/hgreenfield1/Kalshi/internal/application/trader"
	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// liveMarket es un mercado operable: ticker parseado y partido localizado.
type liveMarket struct {
	market domain.Market
	info   domain.TickerInfo
	game   domain.Game
}

// runLive opera en papel todos los mercados abiertos hasta que sus partidos
// terminan o llega SIGINT. Un feed compartido, un trader por (mercado, estrategia).
func runLive(ctx context.Context, cfg *config.Config, d deps, reporter ports.Reporter, strategies []strategy.Strategy) error {
	if d.creds == nil {
		return fmt.Errorf("runLive: the websocket feed requires kalshi.key_id and kalshi.key_file")
	}

	rec := metrics.NewRecorder()
	svc := d.svc
	svc.Metrics = rec

	markets, err := discoverMarkets(ctx, cfg, svc)
	if err != nil {
		return err
	}
	if len(markets) == 0 {
		slog.Warn("no tradable markets found", "series", cfg.Live.Series, "tickers", cfg.Live.Tickers)
		return nil
	}

	tickers := make([]string, 0, len(markets))
	for _, m := range markets {
		tickers = append(tickers, m.market.Ticker)
	}
	slog.Info("=== LIVE PAPER TRADING ===", "markets", len(markets), "strategies", len(strategies))

	dialer := kalshi.NewDialer(kalshi.FeedConfig{URL: d.kalshi.WSURL()}, d.creds, slog.Default())
	sup := feed.NewSupervisor(dialer, feed.Config{
		Tickers:         tickers,
		Backoff:         cfg.ReconnectBackoff(),
		MaxDialFailures: cfg.Feed.MaxDialFailures,
	}, slog.Default(), rec)

	g, gctx := errgroup.WithContext(ctx)
	feedCtx, stopFeed := context.WithCancel(gctx)
	defer stopFeed()

	g.Go(func() error {
		if err := sup.Run(feedCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.Metrics.Addr != "" {
		startMetricsServer(feedCtx, g, cfg.Metrics.Addr, rec)
	}

	var (
		wg      sync.WaitGroup
		printMu sync.Mutex
	)
	for _, m := range markets {
		m := m
		for _, s := range strategies {
			s := s
			t := trader.New(svc, trader.Config{
				RefreshInterval: cfg.GameRefresh(),
				PregameWindow:   cfg.PregameWindow(),
				InitialCash:     initialCash(cfg),
				Model:           strategy.NewAlphaDecay(cfg.Model.AlphaT, cfg.Model.AlphaProb),
				Persist:         svc.Store != nil,
			}, sup, m.market, m.info, m.game, s)

			wg.Add(1)
			g.Go(func() error {
				defer wg.Done()
				res, err := t.Run(gctx)
				// Los errores de un mercado no paran a los demás
				if err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("trader stopped", "ticker", m.market.Ticker, "strategy", s.Name(), "err", err)
				}
				printMu.Lock()
				defer printMu.Unlock()
				if perr := reporter.PrintBacktest(res); perr != nil {
					slog.Warn("reporter error", "err", perr)
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		wg.Wait()
		stopFeed()
		return nil
	})

	return g.Wait()
}

// discoverMarkets resuelve los mercados a operar: tickers explícitos o las
// series configuradas con status open. Solo mantiene el mercado del equipo local
// de cada partido; los tickers que no parsean o sin partido se saltan.
func discoverMarkets(ctx context.Context, cfg *config.Config, svc engine.Services) ([]liveMarket, error) {
	var markets []domain.Market
	if len(cfg.Live.Tickers) > 0 {
		for _, t := range cfg.Live.Tickers {
			m, err := svc.Exchange.GetMarket(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("discoverMarkets: %s: %w", t, err)
			}
			markets = append(markets, m)
		}
	} else {
		ms, err := svc.Exchange.GetMarkets(ctx, cfg.Live.Series, "open")
		if err != nil {
			return nil, fmt.Errorf("discoverMarkets: %w", err)
		}
		markets = ms
	}

	var out []liveMarket
	for _, m := range markets {
		info, err := domain.ParseTicker(m.Ticker)
		if err != nil {
			slog.Error("skipping market", "ticker", m.Ticker, "err", err)
			continue
		}
		game, err := svc.Locator.FindGame(ctx, info)
		if err != nil {
			slog.Warn("skipping market: game not found", "ticker", m.Ticker, "err", err)
			continue
		}
		if info.Team != game.HomeTeam && len(cfg.Live.Tickers) == 0 {
			slog.Debug("skipping away-team market", "ticker", m.Ticker)
			continue
		}
		if domain.Phase(game.Status) == domain.PhaseFinal {
			slog.Debug("skipping finished game", "ticker", m.Ticker, "game_id", game.ID)
			continue
		}
		out = append(out, liveMarket{market: m, info: info, game: game})
	}
	return out, nil
}

func startMetricsServer(ctx context.Context, g *errgroup.Group, addr string, rec *metrics.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		slog.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
