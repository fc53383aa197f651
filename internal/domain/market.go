package domain

import (
	"fmt"
	"strings"
	"time"
)

// Market es un mercado binario de Kalshi (contrato YES/NO, precios en centavos).
type Market struct {
	Ticker       string
	EventTicker  string
	SeriesTicker string
	Title        string
	YesSubTitle  string
	Status       string
	YesBid       int
	YesAsk       int
	LastPrice    int
	Volume       int64
	OpenTime     time.Time
	CloseTime    time.Time
	Result       string
}

// Series devuelve el series ticker, derivándolo del ticker si el exchange no lo envía.
func (m Market) Series() string {
	if m.SeriesTicker != "" {
		return m.SeriesTicker
	}
	series, _, _ := strings.Cut(m.Ticker, "-")
	return series
}

// TickerInfo es la descomposición de un ticker de partido:
// <SERIES>-<YY><MON><DD><AWAY><HOME>[G2]-<TEAM>.
// Team es el equipo al que paga el YES; Opponent el otro.
type TickerInfo struct {
	Ticker         string
	Series         string
	Date           time.Time
	Team           string
	Opponent       string
	DoubleheaderG2 bool
}

// ParseTicker descompone un ticker de partido. Cualquier forma inesperada
// devuelve un error que envuelve ErrTickerParse.
func ParseTicker(ticker string) (TickerInfo, error) {
	parts := strings.Split(ticker, "-")
	if len(parts) != 3 {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: expected 3 segments: %w", ticker, ErrTickerParse)
	}
	series, data, team := parts[0], parts[1], parts[2]
	if len(data) < 7 {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: event segment too short: %w", ticker, ErrTickerParse)
	}
	if !validTeamCode(team) {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: bad team code %q: %w", ticker, team, ErrTickerParse)
	}

	// "25JUN13" -> 13 Jun 2025
	date, err := time.Parse("06Jan02", data[:2]+titleMonth(data[2:5])+data[5:7])
	if err != nil {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: date: %v: %w", ticker, err, ErrTickerParse)
	}

	teams := data[7:]
	g2 := strings.Contains(teams, "G2")
	rest := strings.Replace(teams, team, "", 1)
	if rest == teams {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: team %s not in %s: %w", ticker, team, teams, ErrTickerParse)
	}
	opponent := strings.Replace(rest, "G2", "", 1)
	if !validTeamCode(opponent) {
		return TickerInfo{}, fmt.Errorf("domain.ParseTicker: %q: bad opponent code %q: %w", ticker, opponent, ErrTickerParse)
	}

	return TickerInfo{
		Ticker:         ticker,
		Series:         series,
		Date:           date,
		Team:           team,
		Opponent:       opponent,
		DoubleheaderG2: g2,
	}, nil
}

func validTeamCode(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// "JUN" -> "Jun" para el layout de time.Parse.
func titleMonth(s string) string {
	if len(s) != 3 {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}

// Candle es una vela de 1 minuto (o el intervalo pedido) de un mercado.
// Los campos nil indican que el exchange no reportó ese valor.
type Candle struct {
	End         time.Time
	PriceMean   *float64
	YesBidClose *float64
	YesAskClose *float64
	Volume      int64
}

// PregameFromCandles aplica la regla de probabilidad pregame: la primera vela
// con price.mean; si no, la media de yes_bid.close y yes_ask.close presentes.
func PregameFromCandles(candles []Candle) Probability {
	for _, c := range candles {
		if c.PriceMean != nil {
			return KnownProbability(*c.PriceMean)
		}
		switch {
		case c.YesBidClose != nil && c.YesAskClose != nil:
			return KnownProbability((*c.YesBidClose + *c.YesAskClose) / 2)
		case c.YesBidClose != nil:
			return KnownProbability(*c.YesBidClose)
		case c.YesAskClose != nil:
			return KnownProbability(*c.YesAskClose)
		}
	}
	return UnavailableProbability("no candle with price in pregame window")
}
