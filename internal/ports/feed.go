package ports

import (
	"context"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// FeedDialer abre conexiones al feed de orderbook en tiempo real.
type FeedDialer interface {
	Dial(ctx context.Context) (FeedConn, error)
}

// FeedConn es una conexión abierta del feed. No es thread-safe:
// la usa una única goroutine (el supervisor).
type FeedConn interface {
	// Subscribe pide snapshot + deltas de orderbook para los tickers.
	Subscribe(ctx context.Context, tickers []string) error

	// Next bloquea hasta el próximo mensaje decodificado.
	// Un cierre limpio del servidor se devuelve como error.
	Next(ctx context.Context) (domain.FeedEvent, error)

	Close() error
}
