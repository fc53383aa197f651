package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionResult es el resultado de una sesión (backtest o live) sobre un mercado.
type SessionResult struct {
	RunID           string
	Ticker          string
	GameID          string
	HomeTeam        string
	AwayTeam        string
	StrategyName    string
	StrategyVersion string
	ModelVersion    string
	Start           time.Time
	End             time.Time

	// Ticks evaluados
	Ticks        int
	TradedTicks  int
	SkippedTicks int // sin prob o sin book: se registran pero no operan

	// Estado final
	InitialCash   decimal.Decimal
	FinalCash     decimal.Decimal
	FinalPosition int
	FinalPhase    Phase
	HomeWon       *bool // nil si el partido no llegó a Final

	Trades      []TradeLogEntry
	Predictions []PredictionRecord
}

// PnL = cash final - cash inicial.
func (r SessionResult) PnL() decimal.Decimal {
	return r.FinalCash.Sub(r.InitialCash)
}
