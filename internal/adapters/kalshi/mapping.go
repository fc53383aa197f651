package kalshi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// mapMarket convierte el DTO de mercado a domain.Market.
func mapMarket(r apiMarket) domain.Market {
	return domain.Market{
		Ticker:       r.Ticker,
		EventTicker:  r.EventTicker,
		SeriesTicker: r.SeriesTicker,
		Title:        r.Title,
		YesSubTitle:  r.YesSubTitle,
		Status:       r.Status,
		YesBid:       r.YesBid,
		YesAsk:       r.YesAsk,
		LastPrice:    r.LastPrice,
		Volume:       r.Volume,
		OpenTime:     parseTime(r.OpenTime),
		CloseTime:    parseTime(r.CloseTime),
		Result:       r.Result,
	}
}

func mapCandles(raw []apiCandlestick) []domain.Candle {
	out := make([]domain.Candle, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Candle{
			End:         time.Unix(r.EndPeriodTS, 0).UTC(),
			PriceMean:   r.Price.Mean,
			YesBidClose: r.YesBid.Close,
			YesAskClose: r.YesAsk.Close,
			Volume:      r.Volume,
		})
	}
	return out
}

func mapLevels(raw [][2]int) []domain.Level {
	levels := make([]domain.Level, 0, len(raw))
	for _, l := range raw {
		levels = append(levels, domain.Level{Price: l[0], Size: l[1]})
	}
	return levels
}

// parseTime acepta los formatos ISO que devuelve la API; vacío o inválido → zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// decodeEvent convierte un mensaje del WebSocket a domain.FeedEvent.
// Los tipos desconocidos devuelven FeedOther sin error.
func decodeEvent(data []byte, receivedAt time.Time) (domain.FeedEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.FeedEvent{}, fmt.Errorf("envelope: %w", err)
	}
	ev := domain.FeedEvent{Type: env.Type, Seq: env.Seq, ReceivedAt: receivedAt}

	switch env.Type {
	case "orderbook_snapshot":
		var m snapshotMsg
		if err := json.Unmarshal(env.Msg, &m); err != nil {
			return ev, fmt.Errorf("%s: %w", env.Type, err)
		}
		ev.Kind = domain.FeedSnapshot
		ev.Ticker = m.MarketTicker
		ev.Yes = mapLevels(m.Yes)
		ev.No = mapLevels(m.No)
		if ev.Seq == 0 {
			ev.Seq = m.Seq
		}

	case "orderbook_delta":
		var m deltaMsg
		if err := json.Unmarshal(env.Msg, &m); err != nil {
			return ev, fmt.Errorf("%s: %w", env.Type, err)
		}
		side, err := domain.ParseSide(m.Side)
		if err != nil {
			return ev, fmt.Errorf("%s: %w", env.Type, err)
		}
		ev.Kind = domain.FeedDelta
		ev.Ticker = m.MarketTicker
		ev.Side = side
		ev.Price = m.Price
		ev.Delta = m.Delta
		if ev.Seq == 0 {
			ev.Seq = m.Seq
		}

	case "subscribed":
		var m subscribedMsg
		if err := json.Unmarshal(env.Msg, &m); err != nil {
			return ev, fmt.Errorf("%s: %w", env.Type, err)
		}
		ev.Kind = domain.FeedSubscribed
		ev.Message = fmt.Sprintf("channel=%s sid=%d", m.Channel, m.SID)

	case "error":
		var m errorMsg
		if err := json.Unmarshal(env.Msg, &m); err != nil {
			return ev, fmt.Errorf("%s: %w", env.Type, err)
		}
		ev.Kind = domain.FeedError
		ev.Message = fmt.Sprintf("code=%d %s", m.Code, m.Msg)

	case "fill":
		var m fillMsg
		if err := json.Unmarshal(env.Msg, &m); err == nil {
			ev.Ticker = m.MarketTicker
			ev.Message = fmt.Sprintf("%s %s %d@%d", m.Action, m.Side, m.Count, m.YesPrice)
		}
	}
	return ev, nil
}
