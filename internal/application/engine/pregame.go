package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// CandlePregame reads the pregame probability of the home team from the
// market's 1-minute candles right after the scheduled start.
type CandlePregame struct {
	Exchange  ports.Exchange
	Market    domain.Market
	Window    time.Duration
	YesIsHome bool
}

// PregameProbability implements ports.PregameSource.
func (c CandlePregame) PregameProbability(ctx context.Context, gameStart time.Time) (domain.Probability, error) {
	window := c.Window
	if window <= 0 {
		window = time.Minute
	}
	candles, err := c.Exchange.GetCandlesticks(ctx, c.Market.Series(), c.Market.Ticker, gameStart, gameStart.Add(window), 1)
	if err != nil {
		return domain.Probability{}, fmt.Errorf("engine.CandlePregame: %w", err)
	}
	p := domain.PregameFromCandles(candles)
	if !c.YesIsHome {
		p = p.Complement()
	}
	return p, nil
}
