package backtest

import (
	"math"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

type quotePair struct {
	bid domain.Quote
	ask domain.Quote
}

// PriceTable maps each minute to the closing yes bid/ask of the candle that ends on it.
type PriceTable struct {
	byMinute map[int64]quotePair
}

// NewPriceTable indexes candles by their end rounded up to the minute.
func NewPriceTable(candles []domain.Candle) *PriceTable {
	pt := &PriceTable{byMinute: make(map[int64]quotePair, len(candles))}
	for _, c := range candles {
		pt.byMinute[CeilMinute(c.End).Unix()] = quotePair{
			bid: quoteOf(c.YesBidClose),
			ask: quoteOf(c.YesAskClose),
		}
	}
	return pt
}

// Quotes returns the bid/ask for the minute containing t. Missing data comes
// back as NoQuote.
func (pt *PriceTable) Quotes(t time.Time) (bid, ask domain.Quote) {
	q, ok := pt.byMinute[CeilMinute(t).Unix()]
	if !ok {
		return domain.NoQuote, domain.NoQuote
	}
	return q.bid, q.ask
}

// Len returns the number of indexed minutes.
func (pt *PriceTable) Len() int { return len(pt.byMinute) }

func quoteOf(v *float64) domain.Quote {
	if v == nil {
		return domain.NoQuote
	}
	return domain.QuoteOf(int(math.Round(*v)))
}
