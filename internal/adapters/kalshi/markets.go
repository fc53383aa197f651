package kalshi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

const marketsPageSize = 1000

// GetMarkets devuelve los mercados de cada serie con el status pedido,
// paginando por cursor hasta agotar los resultados.
func (c *Client) GetMarkets(ctx context.Context, series []string, status string) ([]domain.Market, error) {
	var all []domain.Market
	for _, s := range series {
		cursor := ""
		for {
			q := url.Values{}
			q.Set("series_ticker", s)
			q.Set("limit", strconv.Itoa(marketsPageSize))
			if status != "" {
				q.Set("status", status)
			}
			if cursor != "" {
				q.Set("cursor", cursor)
			}

			var resp marketsResponse
			if err := c.get(ctx, "/markets", q, &resp); err != nil {
				return nil, fmt.Errorf("kalshi.GetMarkets %s: %w", s, err)
			}
			for _, m := range resp.Markets {
				all = append(all, mapMarket(m))
			}

			c.logger.Debug("fetched markets page", "series", s, "count", len(resp.Markets), "total", len(all))
			if resp.Cursor == "" || len(resp.Markets) == 0 {
				break
			}
			cursor = resp.Cursor
		}
	}
	return all, nil
}

// GetMarket devuelve un mercado por ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (domain.Market, error) {
	var resp singleMarketResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return domain.Market{}, fmt.Errorf("kalshi.GetMarket %s: %w", ticker, err)
	}
	return mapMarket(resp.Market), nil
}
