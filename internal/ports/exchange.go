package ports

import (
	"context"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// Exchange obtiene mercados y velas del exchange (Kalshi REST).
type Exchange interface {
	// GetMarkets devuelve los mercados de las series dadas con el status pedido
	// ("open", "settled", ...). Pagina automáticamente.
	GetMarkets(ctx context.Context, series []string, status string) ([]domain.Market, error)

	// GetMarket devuelve un mercado por ticker.
	GetMarket(ctx context.Context, ticker string) (domain.Market, error)

	// GetCandlesticks devuelve las velas de [start, end] con el intervalo en minutos.
	GetCandlesticks(ctx context.Context, series, ticker string, start, end time.Time, intervalMinutes int) ([]domain.Candle, error)
}
