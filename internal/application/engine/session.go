package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
	"github.com/hgreenfield1/Kalshi/internal/strategy"
)

// SessionConfig describes one strategy trading one market.
type SessionConfig struct {
	RunID       string // generated when empty
	Market      domain.Market
	Game        domain.Game
	YesIsHome   bool // false when the market's YES pays on the away team
	Strategy    strategy.Strategy
	Model       strategy.PredictionModel
	InitialCash decimal.Decimal
}

// Tick is the outcome of one evaluation.
type Tick struct {
	At     time.Time
	Prob   domain.Probability
	Bid    domain.Quote
	Ask    domain.Quote
	Signal domain.Signal
	Trade  *domain.TradeLogEntry
	Record domain.PredictionRecord
}

// Session runs the decision pipeline for one market: model, strategy,
// ledger and prediction log. It has a single owner.
type Session struct {
	cfg     SessionConfig
	ledger  *domain.Ledger
	logger  *slog.Logger
	metrics ports.Metrics

	lastBuy  time.Time
	lastSell time.Time
	records  []domain.PredictionRecord

	ticks, traded, skipped int
	first, last            time.Time
	finalPhase             domain.Phase
	yesWon                 *bool
}

// NewSession creates a flat session with the strategy's position bounds.
func NewSession(cfg SessionConfig, svc Services) *Session {
	svc = svc.WithDefaults()
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.InitialCash.IsZero() {
		cfg.InitialCash = decimal.NewFromInt(100)
	}
	if cfg.Model == nil {
		cfg.Model = strategy.NewAlphaDecay(0, 0)
	}
	lo, hi := cfg.Strategy.PositionBounds()
	return &Session{
		cfg:     cfg,
		ledger:  domain.NewLedger(cfg.InitialCash, lo, hi),
		logger:  svc.Logger.With("ticker", cfg.Market.Ticker, "strategy", cfg.Strategy.Name()),
		metrics: svc.Metrics,
	}
}

// Ledger exposes the session ledger read-only.
func (s *Session) Ledger() domain.LedgerState { return s.ledger.State() }

// Records returns the prediction log so far.
func (s *Session) Records() []domain.PredictionRecord {
	out := make([]domain.PredictionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Evaluate runs one tick: predict, decide, execute against the ledger, log.
// Ticks without probability or quotes are logged and recorded but never traded.
func (s *Session) Evaluate(at time.Time, g domain.GameState, bid, ask domain.Quote) Tick {
	s.touch(at)
	prob := s.cfg.Model.Predict(g)
	if !s.cfg.YesIsHome {
		prob = prob.Complement()
	}

	sig := s.cfg.Strategy.Decide(strategy.Input{
		Now:      at,
		Prob:     prob,
		Bid:      bid,
		Ask:      ask,
		Ledger:   s.ledger.State(),
		LastBuy:  s.lastBuy,
		LastSell: s.lastSell,
	})

	tick := Tick{At: at, Prob: prob, Bid: bid, Ask: ask, Signal: sig}
	evaluated := prob.Available() && bid.Valid && ask.Valid
	if !evaluated {
		s.skipped++
	}

	if sig.IsTrade() {
		var (
			entry domain.TradeLogEntry
			err   error
		)
		if sig.Direction == domain.Buy {
			entry, err = s.ledger.Buy(at, ask.Price, sig.Size)
		} else {
			entry, err = s.ledger.Sell(at, bid.Price, sig.Size)
		}
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			s.logger.Info("skipped opportunity", "signal", sig.String(), "err", err)
			tick.Signal = domain.HoldSignal("capacity exceeded")
		case err != nil:
			s.logger.Error("ledger rejected trade", "signal", sig.String(), "err", err)
			tick.Signal = domain.HoldSignal(err.Error())
		default:
			if sig.Direction == domain.Buy {
				s.lastBuy = at
			} else {
				s.lastSell = at
			}
			s.traded++
			tick.Trade = &entry
			s.logger.Info("trade", "action", entry.Action, "price", entry.Price, "size", entry.Size,
				"covered", entry.Covered, "position", entry.Position, "cash", entry.Cash.StringFixed(2))
		}
	} else if sig.Reason != "" && evaluated {
		s.logger.Debug("no trade", "reason", sig.Reason)
	}

	st := s.ledger.State()
	cash, _ := st.Cash.Float64()
	s.metrics.Signal(s.cfg.Strategy.Name(), tick.Signal.Direction.String())
	s.metrics.Ledger(s.cfg.Strategy.Name(), s.cfg.Market.Ticker, st.Position, cash)
	if v, ok := prob.Value(); ok {
		s.metrics.Probability(s.cfg.Market.Ticker, v)
	}

	s.logger.Info("tick",
		"at", at.UTC().Format(time.RFC3339),
		"phase", g.Phase,
		"prob", prob.String(),
		"bid", bid.String(),
		"ask", ask.String(),
		"cash", st.Cash.StringFixed(2),
		"position", st.Position,
		"signal", tick.Signal.String(),
	)

	tick.Record = s.record(at, prob, bid, ask, tick.Signal, evaluated)
	s.records = append(s.records, tick.Record)
	return tick
}

// Settle flattens the position at the terminal price of the YES side
// (100 if it won, 0 otherwise), emits the final record and stamps the
// outcome on every record of the session.
func (s *Session) Settle(at time.Time, g domain.GameState) *domain.TradeLogEntry {
	s.touch(at)
	price := g.SettlementPrice()
	if !s.cfg.YesIsHome {
		price = 100 - price
	}
	won := price == 100
	s.yesWon = &won
	s.finalPhase = g.Phase

	if pos := s.ledger.Position(); pos != 0 {
		s.logger.Warn("settling remaining position", "position", pos, "price", price)
	}
	entry := s.ledger.CloseAll(at, price, price)

	final := s.record(at, domain.KnownProbability(float64(price)), domain.QuoteOf(price), domain.QuoteOf(price), domain.HoldSignal(""), true)
	s.records = append(s.records, final)
	for i := range s.records {
		s.records[i].ActualOutcome = &won
	}

	st := s.ledger.State()
	s.logger.Info("session settled", "yes_won", won, "cash", st.Cash.StringFixed(2), "position", st.Position)
	return entry
}

// Result summarizes the session.
func (s *Session) Result() domain.SessionResult {
	st := s.ledger.State()
	return domain.SessionResult{
		RunID:           s.cfg.RunID,
		Ticker:          s.cfg.Market.Ticker,
		GameID:          s.cfg.Game.ID,
		HomeTeam:        s.cfg.Game.HomeTeam,
		AwayTeam:        s.cfg.Game.AwayTeam,
		StrategyName:    s.cfg.Strategy.Name(),
		StrategyVersion: s.cfg.Strategy.Version(),
		ModelVersion:    s.cfg.Model.Version(),
		Start:           s.first,
		End:             s.last,
		Ticks:           s.ticks,
		TradedTicks:     s.traded,
		SkippedTicks:    s.skipped,
		InitialCash:     s.cfg.InitialCash,
		FinalCash:       st.Cash,
		FinalPosition:   st.Position,
		FinalPhase:      s.finalPhase,
		HomeWon:         s.homeWon(),
		Trades:          s.ledger.Trades(),
		Predictions:     s.Records(),
	}
}

func (s *Session) homeWon() *bool {
	if s.yesWon == nil {
		return nil
	}
	v := *s.yesWon == s.cfg.YesIsHome
	return &v
}

func (s *Session) touch(at time.Time) {
	s.ticks++
	if s.first.IsZero() || at.Before(s.first) {
		s.first = at
	}
	if at.After(s.last) {
		s.last = at
	}
}

func (s *Session) record(at time.Time, prob domain.Probability, bid, ask domain.Quote, sig domain.Signal, evaluated bool) domain.PredictionRecord {
	st := s.ledger.State()
	cash, _ := st.Cash.Float64()
	initial, _ := s.cfg.InitialCash.Float64()
	rec := domain.PredictionRecord{
		RunID:                  s.cfg.RunID,
		GameID:                 s.cfg.Game.ID,
		Ticker:                 s.cfg.Market.Ticker,
		Timestamp:              at,
		Cash:                   cash,
		InitialCash:            initial,
		Positions:              st.Position,
		PredictionModelVersion: s.cfg.Model.Version(),
		StrategyName:           s.cfg.Strategy.Name(),
		StrategyVersion:        s.cfg.Strategy.Version(),
	}
	if v, ok := prob.Value(); ok {
		rec.PredictedProb = &v
	}
	if bid.Valid {
		b := bid.Price
		rec.BidPrice = &b
	}
	if ask.Valid {
		a := ask.Price
		rec.AskPrice = &a
	}
	if evaluated {
		sign := sig.Direction.Sign()
		rec.Signal = &sign
	}
	return rec
}
