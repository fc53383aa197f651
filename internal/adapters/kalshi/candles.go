package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// GetCandlesticks devuelve las velas de ticker entre start y end con el
// intervalo dado en minutos (1, 60 o 1440 según la API).
func (c *Client) GetCandlesticks(ctx context.Context, series, ticker string, start, end time.Time, intervalMinutes int) ([]domain.Candle, error) {
	if intervalMinutes <= 0 {
		intervalMinutes = 1
	}
	q := url.Values{}
	q.Set("start_ts", strconv.FormatInt(start.Unix(), 10))
	q.Set("end_ts", strconv.FormatInt(end.Unix(), 10))
	q.Set("period_interval", strconv.Itoa(intervalMinutes))

	path := fmt.Sprintf("/series/%s/markets/%s/candlesticks", url.PathEscape(series), url.PathEscape(ticker))
	var resp candlesticksResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, fmt.Errorf("kalshi.GetCandlesticks %s: %w", ticker, err)
	}
	return mapCandles(resp.Candlesticks), nil
}
