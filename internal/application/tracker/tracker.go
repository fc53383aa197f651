// Package tracker follows one game through its phases and derives the
// fields the prediction model needs.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// Tracker holds the GameState of a single game. It has a single owner and
// is not safe for concurrent use.
type Tracker struct {
	provider ports.GameProvider
	table    ports.WinProbabilityTable
	pregame  ports.PregameSource
	start    time.Time
	logger   *slog.Logger
	metrics  ports.Metrics

	state  domain.GameState
	halted error
}

// Config wires a tracker to its collaborators.
type Config struct {
	GameID    string
	GameStart time.Time
	Provider  ports.GameProvider
	Table     ports.WinProbabilityTable
	Pregame   ports.PregameSource
	Logger    *slog.Logger
	Metrics   ports.Metrics
}

// New creates a tracker in Pre-Game.
func New(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Tracker{
		provider: cfg.Provider,
		table:    cfg.Table,
		pregame:  cfg.Pregame,
		start:    cfg.GameStart,
		logger:   logger.With("game_id", cfg.GameID),
		metrics:  metrics,
		state:    domain.NewGameState(cfg.GameID),
	}
}

// State returns the last computed state.
func (t *Tracker) State() domain.GameState { return t.state }

// Halted reports whether an unsupported phase stopped the tracker.
func (t *Tracker) Halted() bool { return t.halted != nil }

// Update fetches the game at the given logical time (zero = now) and
// recomputes the derived fields.
//
// Errors wrapping domain.ErrProviderUnavailable are transient and leave the
// previous state in place. An unsupported phase halts the tracker: that call
// returns domain.ErrUnsupportedPhase and every later call domain.ErrTrackerHalted.
// Once Final, further calls are no-ops.
func (t *Tracker) Update(ctx context.Context, at time.Time) (domain.GameState, error) {
	if t.halted != nil {
		return t.state, fmt.Errorf("tracker.Update: %w: %v", domain.ErrTrackerHalted, t.halted)
	}
	if t.state.Phase == domain.PhaseFinal {
		return t.state, nil
	}

	snap, err := t.provider.GameState(ctx, t.state.GameID, at)
	if err != nil {
		t.metrics.ProviderFailure("game_state")
		t.logger.Warn("game state unavailable", "at", at, "err", err)
		return t.state, fmt.Errorf("tracker.Update: %w: %v", domain.ErrProviderUnavailable, err)
	}

	phase, err := domain.ParsePhase(snap.Status)
	if err != nil {
		t.halted = err
		t.logger.Error("unsupported game phase, tracking halted", "status", snap.Status)
		return t.state, fmt.Errorf("tracker.Update: %w", err)
	}

	next := t.state
	next.Phase = phase
	next.HomeScore = snap.HomeScore
	next.AwayScore = snap.AwayScore
	next.NetScore = snap.HomeScore - snap.AwayScore
	next.UpdatedAt = at

	switch phase {
	case domain.PhaseInProgress:
		next.Inning = max(1, snap.Inning)
		next.Half = snap.Half
		next.Outs = snap.Outs
		next.Balls = snap.Balls
		next.Strikes = snap.Strikes
		next.BaseState = domain.BaseStateOf(snap.Runners)
		next.RollForward()
		next.Live = t.table.Lookup(next.Half, next.Inning, next.Outs, next.BaseState, next.NetScore)
		if !next.Live.Available() {
			t.metrics.ProviderFailure("live_probability")
			t.logger.Warn("live probability unavailable",
				"inning", next.Inning, "half", next.Half.String(), "outs", next.Outs,
				"base_state", next.BaseState, "net_score", next.NetScore,
				"reason", next.Live.Reason())
		}
		if !next.Pregame.Available() {
			next.Pregame = t.fetchPregame(ctx)
		}
		next.PctPlayed = next.ComputePctPlayed()

	case domain.PhaseFinal:
		next.Inning = max(next.Inning, snap.Inning)
		next.Outs, next.Strikes, next.Balls = 0, 0, 0
		next.PctPlayed = 1
		next.Live = domain.KnownProbability(float64(next.SettlementPrice()))

	case domain.PhasePreGame:
		next.Live = domain.UnavailableProbability("game not started")
		next.PctPlayed = 0

	case domain.PhaseDelayed:
		// keep the last in-game count and live probability
	}

	if t.state.Phase != phase {
		t.logger.Info("game phase", "from", t.state.Phase, "to", phase,
			"home", next.HomeScore, "away", next.AwayScore)
	}
	t.state = next
	return t.state, nil
}

// fetchPregame asks for the pregame probability. Failures are reported and
// retried on the next in-progress tick.
func (t *Tracker) fetchPregame(ctx context.Context) domain.Probability {
	if t.pregame == nil {
		return domain.UnavailableProbability("no pregame source")
	}
	p, err := t.pregame.PregameProbability(ctx, t.start)
	if err != nil {
		t.metrics.ProviderFailure("pregame")
		t.logger.Warn("pregame probability unavailable, will retry", "err", err)
		return domain.UnavailableProbability(err.Error())
	}
	if !p.Available() {
		t.metrics.ProviderFailure("pregame")
		t.logger.Warn("pregame probability unavailable, will retry", "reason", p.Reason())
		return p
	}
	t.logger.Info("pregame probability cached", "p", p.String())
	return p
}
