// Package backtest replays a finished game minute by minute through the
// same tracker, model, strategy and ledger used in live trading.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hgreenfield1/Kalshi/internal/application/engine"
	"github.com/hgreenfield1/Kalshi/internal/application/tracker"
	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
)

// Config holds backtest settings.
type Config struct {
	Workers       int           // prefetch pool size (0 = NumCPU)
	TickInterval  time.Duration // default 1m
	PregameWindow time.Duration // candle window after first pitch, default 1m
	InitialCash   decimal.Decimal
	Model         strategy.PredictionModel
	Store         bool // persist predictions when the services carry a store
}

// Job is one market to replay with one or more strategies.
type Job struct {
	Market     domain.Market
	Info       domain.TickerInfo
	Game       domain.Game
	Strategies []strategy.Strategy
}

// Driver runs backtests.
type Driver struct {
	svc engine.Services
	cfg Config
}

// New creates a driver.
func New(svc engine.Services, cfg Config) *Driver {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Minute
	}
	if cfg.PregameWindow <= 0 {
		cfg.PregameWindow = time.Minute
	}
	if cfg.InitialCash.IsZero() {
		cfg.InitialCash = decimal.NewFromInt(100)
	}
	if cfg.Model == nil {
		cfg.Model = strategy.NewAlphaDecay(0, 0)
	}
	return &Driver{svc: svc.WithDefaults(), cfg: cfg}
}

// Run replays the job's game. Timestamps go from the second recorded game
// timecode to the last one every TickInterval; the first timecode is the
// pre-game record. Each strategy gets its own session fed by a single tracker.
func (d *Driver) Run(ctx context.Context, job Job) ([]domain.SessionResult, error) {
	log := d.svc.Logger.With("ticker", job.Market.Ticker, "game_id", job.Game.ID)
	if len(job.Strategies) == 0 {
		return nil, fmt.Errorf("backtest.Run: no strategies")
	}

	gameTs, err := d.svc.Locator.GameTimestamps(ctx, job.Game.ID)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: game timestamps: %w", err)
	}
	if len(gameTs) < 2 {
		return nil, fmt.Errorf("backtest.Run: game %s has %d timecodes: %w", job.Game.ID, len(gameTs), domain.ErrProviderUnavailable)
	}
	timestamps := Timestamps(gameTs[1], gameTs[len(gameTs)-1], d.cfg.TickInterval)

	candles, err := d.svc.Exchange.GetCandlesticks(ctx, job.Market.Series(), job.Market.Ticker,
		timestamps[0], timestamps[len(timestamps)-1], 1)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: candlesticks: %w", err)
	}
	prices := NewPriceTable(candles)

	snaps, err := Prefetch(ctx, d.svc.Games, job.Game.ID, timestamps, d.cfg.Workers, log)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: %w", err)
	}

	yesIsHome := job.Info.Team == "" || job.Info.Team == job.Game.HomeTeam
	tr := tracker.New(tracker.Config{
		GameID:    job.Game.ID,
		GameStart: gameTs[1],
		Provider:  snaps,
		Table:     d.svc.Table,
		Pregame: engine.CandlePregame{
			Exchange:  d.svc.Exchange,
			Market:    job.Market,
			Window:    d.cfg.PregameWindow,
			YesIsHome: yesIsHome,
		},
		Logger:  log,
		Metrics: d.svc.Metrics,
	})

	runID := uuid.NewString()
	sessions := make([]*engine.Session, 0, len(job.Strategies))
	for _, s := range job.Strategies {
		sessions = append(sessions, engine.NewSession(engine.SessionConfig{
			RunID:       runID,
			Market:      job.Market,
			Game:        job.Game,
			YesIsHome:   yesIsHome,
			Strategy:    s,
			Model:       d.cfg.Model,
			InitialCash: d.cfg.InitialCash,
		}, d.svc))
	}

	log.Info("backtest starting",
		"run_id", runID,
		"timestamps", len(timestamps),
		"candles", prices.Len(),
		"snapshots", len(snaps),
		"strategies", len(sessions),
	)

	g, end, err := d.replay(ctx, tr, prices, timestamps, sessions)
	if err != nil {
		return nil, err
	}

	if g.Phase != domain.PhaseFinal {
		log.Warn("game not final at end of replay, settling on current score", "phase", g.Phase)
	}
	results := make([]domain.SessionResult, 0, len(sessions))
	for _, s := range sessions {
		s.Settle(end, g)
		res := s.Result()
		results = append(results, res)

		if d.cfg.Store && d.svc.Store != nil {
			if err := d.svc.Store.SavePredictions(ctx, res.Predictions); err != nil {
				return results, fmt.Errorf("backtest.Run: save predictions: %w", err)
			}
		}
	}
	return results, nil
}

// replay drives tracker → model → strategy → ledger for every timestamp and
// stops at Final, returning the last state and its timestamp. Provider gaps
// degrade that tick to a logged no-trade.
func (d *Driver) replay(ctx context.Context, tr *tracker.Tracker, prices *PriceTable, timestamps []time.Time, sessions []*engine.Session) (domain.GameState, time.Time, error) {
	var (
		g  domain.GameState
		at time.Time
	)
	for _, ts := range timestamps {
		if err := ctx.Err(); err != nil {
			return g, at, fmt.Errorf("backtest.replay: %w", err)
		}
		at = ts

		state, err := tr.Update(ctx, ts)
		g = state
		switch {
		case errors.Is(err, domain.ErrUnsupportedPhase), errors.Is(err, domain.ErrTrackerHalted):
			return g, at, fmt.Errorf("backtest.replay: %w", err)
		case err != nil:
			state.Live = domain.UnavailableProbability(err.Error())
		}

		if g.Phase == domain.PhaseFinal {
			return g, at, nil
		}

		bid, ask := prices.Quotes(ts)
		for _, s := range sessions {
			s.Evaluate(ts, state, bid, ask)
		}
	}
	return g, at, nil
}
