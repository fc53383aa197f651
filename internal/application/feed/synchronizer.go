// Package feed mantiene los orderbooks en vivo a partir del feed secuenciado
// del exchange: aplica snapshots y deltas y supervisa la conexión.
package feed

import (
	"errors"
	"fmt"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// ErrStale se devuelve para deltas de un book que ya tuvo un gap y
// espera un snapshot nuevo.
var ErrStale = errors.New("book stale, awaiting snapshot")

// Synchronizer aplica snapshots y deltas a un book por ticker y exige
// secuencia contigua. No es thread-safe; el supervisor serializa el acceso.
type Synchronizer struct {
	source string
	books  map[string]*domain.OrderBook
	stale  map[string]bool
}

// NewSynchronizer crea un synchronizer vacío. source etiqueta los books.
func NewSynchronizer(source string) *Synchronizer {
	return &Synchronizer{
		source: source,
		books:  make(map[string]*domain.OrderBook),
		stale:  make(map[string]bool),
	}
}

// ApplySnapshot reemplaza el book entero y fija la baseline de secuencia.
// seq 0 significa "sin baseline": el primer delta se acepta tal cual.
func (s *Synchronizer) ApplySnapshot(ticker string, yes, no []domain.Level, seq int64) error {
	ob := domain.NewOrderBook(ticker, s.source)
	if err := ob.Replace(yes, no); err != nil {
		return fmt.Errorf("feed.ApplySnapshot: %w", err)
	}
	ob.LastSeq = seq
	s.books[ticker] = ob
	delete(s.stale, ticker)
	return nil
}

// ApplyDelta ajusta un nivel si seq == lastSeq+1. Cualquier otra secuencia
// (hueco, duplicado, regresión) devuelve *domain.FeedGapError sin tocar el book,
// que queda stale hasta el próximo snapshot.
func (s *Synchronizer) ApplyDelta(ticker string, side domain.Side, price, delta int, seq int64) error {
	ob, ok := s.books[ticker]
	if !ok {
		return fmt.Errorf("feed.ApplyDelta: %s: delta before snapshot: %w", ticker, domain.ErrFeedGap)
	}
	if s.stale[ticker] {
		return fmt.Errorf("feed.ApplyDelta: %s: %w", ticker, ErrStale)
	}
	if ob.LastSeq != 0 && seq != ob.LastSeq+1 {
		s.stale[ticker] = true
		return &domain.FeedGapError{Ticker: ticker, Expected: ob.LastSeq + 1, Got: seq}
	}
	if err := ob.Adjust(side, price, delta); err != nil {
		s.stale[ticker] = true
		return fmt.Errorf("feed.ApplyDelta: %w", err)
	}
	ob.LastSeq = seq
	return nil
}

// Apply despacha un evento decodificado. changed indica si algún book cambió.
func (s *Synchronizer) Apply(ev domain.FeedEvent) (changed bool, err error) {
	switch ev.Kind {
	case domain.FeedSnapshot:
		if err := s.ApplySnapshot(ev.Ticker, ev.Yes, ev.No, ev.Seq); err != nil {
			return false, err
		}
		return true, nil
	case domain.FeedDelta:
		if err := s.ApplyDelta(ev.Ticker, ev.Side, ev.Price, ev.Delta, ev.Seq); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Book devuelve una copia del book si existe y no está stale.
func (s *Synchronizer) Book(ticker string) (*domain.OrderBook, bool) {
	ob, ok := s.books[ticker]
	if !ok || s.stale[ticker] {
		return nil, false
	}
	return ob.Clone(), true
}

// Peek devuelve una copia del book aunque esté stale.
func (s *Synchronizer) Peek(ticker string) (*domain.OrderBook, bool) {
	ob, ok := s.books[ticker]
	if !ok {
		return nil, false
	}
	return ob.Clone(), true
}

// Reset descarta todos los books.
func (s *Synchronizer) Reset() {
	s.books = make(map[string]*domain.OrderBook)
	s.stale = make(map[string]bool)
}
