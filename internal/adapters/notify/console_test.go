package notify_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/adapters/notify"
	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Reporter = (*notify.Console)(nil)

func makeResult() domain.SessionResult {
	won := true
	at := time.Date(2025, time.June, 13, 23, 40, 0, 0, time.UTC)
	return domain.SessionResult{
		Ticker:          "KXMLBGAME-25JUN13ATHKC-KC",
		GameID:          "777735",
		HomeTeam:        "KC",
		AwayTeam:        "ATH",
		StrategyName:    "simple",
		StrategyVersion: "1.0",
		Ticks:           12,
		TradedTicks:     2,
		SkippedTicks:    1,
		InitialCash:     decimal.NewFromInt(100),
		FinalCash:       decimal.RequireFromString("100.40"),
		FinalPhase:      domain.PhaseFinal,
		HomeWon:         &won,
		Trades: []domain.TradeLogEntry{
			{At: at, Action: domain.ActionBuy, Price: 60, Size: 1, Opened: 1, Position: 1, Cash: decimal.RequireFromString("99.40")},
			{At: at.Add(time.Hour), Action: domain.ActionSell, Price: 100, Size: 1, Covered: 1, Cash: decimal.RequireFromString("100.40")},
		},
	}
}

func TestConsole_PrintBacktest(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, c.PrintBacktest(makeResult()))

	out := buf.String()
	assert.Contains(t, out, "KXMLBGAME-25JUN13ATHKC-KC")
	assert.Contains(t, out, "home won")
	assert.Contains(t, out, "$100.00 -> $100.40")
	assert.Contains(t, out, "+$0.40")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "99.40")
}

func TestConsole_PrintBacktest_WithoutTradeLog(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	r := makeResult()
	r.HomeWon = nil
	r.FinalCash = decimal.NewFromInt(97)
	require.NoError(t, c.PrintBacktest(r))

	out := buf.String()
	assert.Contains(t, out, "no final")
	assert.Contains(t, out, "$-3.00")
	assert.NotContains(t, out, "BUY")
}

func TestConsole_PrintPerformance(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	err := c.PrintPerformance([]domain.StrategyPerformance{{
		StrategyName:    "aggressive_value",
		StrategyVersion: "1.0",
		ModelVersion:    "1.0",
		Predictions:     420,
		Games:           3,
		Accuracy:        71.24,
		AvgFinalCash:    102.5,
		ROI:             2.5,
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "aggressive_value")
	assert.Contains(t, out, "71.2")
	assert.Contains(t, out, "102.50")
	assert.Contains(t, out, "+2.50")
}

func TestConsole_EmptyReports(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.PrintPerformance(nil))
	require.NoError(t, c.PrintCalibration(nil))
	assert.Contains(t, buf.String(), "No predictions stored")
	assert.Contains(t, buf.String(), "No settled predictions")
}

func TestConsole_PrintCalibration(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	err := c.PrintCalibration([]domain.CalibrationBin{
		{Lower: 10, Upper: 20, Count: 2, AvgPredicted: 15, ActualWinRate: 0},
		{Lower: 80, Upper: 90, Count: 5, AvgPredicted: 84, ActualWinRate: 80},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "10-20")
	assert.Contains(t, out, "-15.0")
	assert.Contains(t, out, "-4.0")
}

func TestConsole_LongStrategyNameTruncated(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.PrintPerformance([]domain.StrategyPerformance{{StrategyName: strings.Repeat("A", 30)}}))
	assert.Contains(t, buf.String(), "...")
}
