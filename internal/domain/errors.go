package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedGap marca una discontinuidad de secuencia en el feed de orderbook
	// (hueco, duplicado o regresión). El book queda stale hasta el próximo snapshot.
	ErrFeedGap = errors.New("feed gap")

	// ErrBookInvalid indica un delta que dejaría el book en un estado imposible
	// (precio fuera de [0,100] o tamaño negativo). También obliga a resincronizar.
	ErrBookInvalid = errors.New("invalid book mutation")

	// ErrUnsupportedPhase es fatal para el tracking de ese partido.
	ErrUnsupportedPhase = errors.New("unsupported game phase")

	// ErrTrackerHalted se devuelve en cada update posterior a un error fatal.
	ErrTrackerHalted = errors.New("game tracker halted")

	// ErrTickerParse es fatal solo para ese mercado.
	ErrTickerParse = errors.New("ticker parse error")

	// ErrCapacityExceeded: la operación dejaría la posición fuera de [min, max].
	ErrCapacityExceeded = errors.New("position capacity exceeded")

	// ErrInsufficientCash: no hay cash para la parte de apertura de la operación.
	ErrInsufficientCash = errors.New("insufficient cash")

	// ErrProviderUnavailable cubre datos externos ausentes (prob live, pregame, lado del book).
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// FeedGapError describe qué secuencia se esperaba y cuál llegó.
type FeedGapError struct {
	Ticker   string
	Expected int64
	Got      int64
}

func (e *FeedGapError) Error() string {
	return fmt.Sprintf("feed gap on %s: expected seq %d, got %d", e.Ticker, e.Expected, e.Got)
}

// Is permite errors.Is(err, ErrFeedGap).
func (e *FeedGapError) Is(target error) bool {
	return target == ErrFeedGap
}
