package domain

import (
	"fmt"
	"sort"
)

// Side es el lado del contrato binario sobre el que cotiza un nivel.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// ParseSide convierte el string del wire a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideYes, SideNo:
		return Side(s), nil
	}
	return "", fmt.Errorf("domain.ParseSide: unknown side %q", s)
}

// Level es un nivel de precio (centavos) con su tamaño en contratos.
type Level struct {
	Price int
	Size  int
}

// OrderBook es el libro de un mercado binario expresado en términos del YES:
// bids son los niveles YES tal cual y asks son los niveles NO complementados
// (100 - precio). Nunca persiste un nivel con tamaño 0.
type OrderBook struct {
	Ticker  string
	LastSeq int64  // 0 = sin baseline de secuencia
	Source  string // origen de la última mutación ("kalshi", "candles", ...)

	bids map[int]int
	asks map[int]int
}

// NewOrderBook crea un book vacío.
func NewOrderBook(ticker, source string) *OrderBook {
	return &OrderBook{
		Ticker: ticker,
		Source: source,
		bids:   make(map[int]int),
		asks:   make(map[int]int),
	}
}

// Replace sustituye ambos lados a partir de niveles YES y NO del wire.
// Valida todo antes de mutar: si algún nivel es inválido el book no cambia.
func (ob *OrderBook) Replace(yes, no []Level) error {
	bids := make(map[int]int, len(yes))
	asks := make(map[int]int, len(no))
	for _, l := range yes {
		if err := validLevel(l); err != nil {
			return fmt.Errorf("domain.OrderBook.Replace %s: %w", ob.Ticker, err)
		}
		if l.Size > 0 {
			bids[l.Price] += l.Size
		}
	}
	for _, l := range no {
		if err := validLevel(l); err != nil {
			return fmt.Errorf("domain.OrderBook.Replace %s: %w", ob.Ticker, err)
		}
		if l.Size > 0 {
			asks[100-l.Price] += l.Size
		}
	}
	ob.bids = bids
	ob.asks = asks
	return nil
}

// Adjust suma sizeDelta al nivel indicado. El precio viene en términos del
// lado que cotiza; los niveles NO se guardan complementados.
// Elimina el nivel al llegar a 0 y rechaza tamaños negativos sin mutar.
func (ob *OrderBook) Adjust(side Side, price, sizeDelta int) error {
	if price < 0 || price > 100 {
		return fmt.Errorf("domain.OrderBook.Adjust %s: price %d: %w", ob.Ticker, price, ErrBookInvalid)
	}
	levels := ob.bids
	key := price
	if side == SideNo {
		levels = ob.asks
		key = 100 - price
	}
	next := levels[key] + sizeDelta
	if next < 0 {
		return fmt.Errorf("domain.OrderBook.Adjust %s: size at %d would be %d: %w", ob.Ticker, key, next, ErrBookInvalid)
	}
	if next == 0 {
		delete(levels, key)
		return nil
	}
	levels[key] = next
	return nil
}

// BestBid devuelve el bid más alto, o NoQuote si no hay bids.
func (ob *OrderBook) BestBid() Quote {
	best, found := 0, false
	for p := range ob.bids {
		if !found || p > best {
			best, found = p, true
		}
	}
	if !found {
		return NoQuote
	}
	return QuoteOf(best)
}

// BestAsk devuelve el ask más bajo, o NoQuote si no hay asks.
func (ob *OrderBook) BestAsk() Quote {
	best, found := 0, false
	for p := range ob.asks {
		if !found || p < best {
			best, found = p, true
		}
	}
	if !found {
		return NoQuote
	}
	return QuoteOf(best)
}

// Bids devuelve los bids ordenados de mayor a menor precio.
func (ob *OrderBook) Bids() []Level {
	return sortedLevels(ob.bids, true)
}

// Asks devuelve los asks ordenados de menor a mayor precio.
func (ob *OrderBook) Asks() []Level {
	return sortedLevels(ob.asks, false)
}

// Clone devuelve una copia independiente del book.
func (ob *OrderBook) Clone() *OrderBook {
	c := NewOrderBook(ob.Ticker, ob.Source)
	c.LastSeq = ob.LastSeq
	for p, s := range ob.bids {
		c.bids[p] = s
	}
	for p, s := range ob.asks {
		c.asks[p] = s
	}
	return c
}

// SameLevels devuelve true si ambos books tienen exactamente los mismos niveles.
func (ob *OrderBook) SameLevels(other *OrderBook) bool {
	return equalLevels(ob.bids, other.bids) && equalLevels(ob.asks, other.asks)
}

func validLevel(l Level) error {
	if l.Price < 0 || l.Price > 100 {
		return fmt.Errorf("price %d: %w", l.Price, ErrBookInvalid)
	}
	if l.Size < 0 {
		return fmt.Errorf("size %d: %w", l.Size, ErrBookInvalid)
	}
	return nil
}

func sortedLevels(m map[int]int, desc bool) []Level {
	out := make([]Level, 0, len(m))
	for p, s := range m {
		out = append(out, Level{Price: p, Size: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}

func equalLevels(a, b map[int]int) bool {
	if len(a) != len(b) {
		return false
	}
	for p, s := range a {
		if b[p] != s {
			return false
		}
	}
	return true
}
