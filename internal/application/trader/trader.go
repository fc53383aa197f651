// Package trader runs the live decision loop for one market: it wakes on
// coalesced book notifications, keeps the game state fresh and paper-trades
// the strategy's signals into the session ledger.
package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hgreenfield1/Kalshi/internal/application/engine"
	"github.com/hgreenfield1/Kalshi/internal/application/tracker"
	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
)

// BookSource is the part of the feed supervisor the trader reads.
type BookSource interface {
	Changed(ticker string) <-chan struct{}
	Book(ticker string) (*domain.OrderBook, bool)
}

// Config holds live trading settings.
type Config struct {
	RefreshInterval time.Duration // minimum time between game state fetches
	PregameWindow   time.Duration
	InitialCash     decimal.Decimal
	Model           strategy.PredictionModel
	Persist         bool
	Now             func() time.Time
}

// Trader trades one market with one strategy.
type Trader struct {
	svc      engine.Services
	cfg      Config
	books    BookSource
	market   domain.Market
	info     domain.TickerInfo
	game     domain.Game
	strategy strategy.Strategy
}

// New creates a trader.
func New(svc engine.Services, cfg Config, books BookSource, market domain.Market, info domain.TickerInfo, game domain.Game, s strategy.Strategy) *Trader {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Trader{
		svc:      svc.WithDefaults(),
		cfg:      cfg,
		books:    books,
		market:   market,
		info:     info,
		game:     game,
		strategy: s,
	}
}

// Run trades until the game is Final (settles, persists and returns the
// result), the tracker halts, or ctx is cancelled.
func (t *Trader) Run(ctx context.Context) (domain.SessionResult, error) {
	log := t.svc.Logger.With("ticker", t.market.Ticker, "game_id", t.game.ID, "strategy", t.strategy.Name())
	yesIsHome := t.info.Team == "" || t.info.Team == t.game.HomeTeam

	tr := tracker.New(tracker.Config{
		GameID:    t.game.ID,
		GameStart: t.game.StartTime,
		Provider:  t.svc.Games,
		Table:     t.svc.Table,
		Pregame: engine.CandlePregame{
			Exchange:  t.svc.Exchange,
			Market:    t.market,
			Window:    t.cfg.PregameWindow,
			YesIsHome: yesIsHome,
		},
		Logger:  log,
		Metrics: t.svc.Metrics,
	})
	session := engine.NewSession(engine.SessionConfig{
		Market:      t.market,
		Game:        t.game,
		YesIsHome:   yesIsHome,
		Strategy:    t.strategy,
		Model:       t.cfg.Model,
		InitialCash: t.cfg.InitialCash,
	}, t.svc)

	changed := t.books.Changed(t.market.Ticker)
	refresh := time.NewTicker(t.cfg.RefreshInterval)
	defer refresh.Stop()

	var (
		state       domain.GameState
		lastRefresh time.Time
	)
	log.Info("trader started", "home", t.game.HomeTeam, "away", t.game.AwayTeam, "yes_is_home", yesIsHome)

	for {
		now := t.cfg.Now()
		if lastRefresh.IsZero() || now.Sub(lastRefresh) >= t.cfg.RefreshInterval {
			lastRefresh = now
			s, err := tr.Update(ctx, time.Time{})
			state = s
			switch {
			case errors.Is(err, domain.ErrUnsupportedPhase), errors.Is(err, domain.ErrTrackerHalted):
				return session.Result(), fmt.Errorf("trader.Run %s: %w", t.market.Ticker, err)
			case err != nil:
				state.Live = domain.UnavailableProbability(err.Error())
			}
		}

		if state.Phase == domain.PhaseFinal {
			return t.finish(ctx, session, now, state)
		}

		if state.Phase == domain.PhasePreGame {
			log.Debug("waiting for first pitch", "start", t.game.StartTime)
		} else {
			bid, ask := domain.NoQuote, domain.NoQuote
			if ob, ok := t.books.Book(t.market.Ticker); ok {
				bid, ask = ob.BestBid(), ob.BestAsk()
			}
			session.Evaluate(now, state, bid, ask)
		}

		select {
		case <-ctx.Done():
			return session.Result(), ctx.Err()
		case <-changed:
		case <-refresh.C:
		}
	}
}

func (t *Trader) finish(ctx context.Context, session *engine.Session, now time.Time, state domain.GameState) (domain.SessionResult, error) {
	session.Settle(now, state)
	res := session.Result()
	if t.cfg.Persist && t.svc.Store != nil {
		if err := t.svc.Store.SavePredictions(ctx, res.Predictions); err != nil {
			return res, fmt.Errorf("trader.finish: save predictions: %w", err)
		}
	}
	return res, nil
}
