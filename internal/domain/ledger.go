package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeAction es el lado de una entrada del trade log.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// TradeLogEntry es una llamada a Buy o Sell, con el reparto cover/open
// y el estado resultante.
type TradeLogEntry struct {
	ID       string
	At       time.Time
	Action   TradeAction
	Price    int
	Size     int
	Covered  int // unidades que cerraron posición contraria
	Opened   int // unidades que abrieron o ampliaron posición
	Position int
	Cash     decimal.Decimal
}

// LedgerState es la vista de solo lectura que consume la estrategia.
type LedgerState struct {
	Cash        decimal.Decimal
	Position    int
	MinPosition int
	MaxPosition int
}

var hundred = decimal.NewFromInt(100)

// Ledger lleva cash y posición de una estrategia sobre un mercado.
// Cada leg se valora en dólares por contrato (precio/100) redondeado a centavos.
// No es thread-safe: tiene un único dueño (la sesión).
type Ledger struct {
	cash     decimal.Decimal
	position int
	min, max int
	log      []TradeLogEntry
}

// NewLedger crea un ledger plano con cash inicial y límites de posición.
func NewLedger(initialCash decimal.Decimal, minPosition, maxPosition int) *Ledger {
	return &Ledger{cash: initialCash, min: minPosition, max: maxPosition}
}

// State devuelve una copia del estado actual.
func (l *Ledger) State() LedgerState {
	return LedgerState{Cash: l.cash, Position: l.position, MinPosition: l.min, MaxPosition: l.max}
}

func (l *Ledger) Cash() decimal.Decimal { return l.cash }
func (l *Ledger) Position() int         { return l.position }

// Trades devuelve una copia del trade log.
func (l *Ledger) Trades() []TradeLogEntry {
	out := make([]TradeLogEntry, len(l.log))
	copy(out, l.log)
	return out
}

// Buy compra size contratos a price. Si hay short, primero lo cubre a
// (100-price)/100 por unidad (suma cash); el resto abre long a price/100.
// Rechaza sin mutar si la posición resultante pasa de max.
func (l *Ledger) Buy(at time.Time, price, size int) (TradeLogEntry, error) {
	if err := l.check(price, size, l.position+size); err != nil {
		return TradeLogEntry{}, fmt.Errorf("domain.Ledger.Buy: %w", err)
	}
	return l.buy(at, price, size), nil
}

// Sell es el espejo de Buy: primero reduce el long a price/100 por unidad,
// el resto abre short a (100-price)/100.
func (l *Ledger) Sell(at time.Time, price, size int) (TradeLogEntry, error) {
	if err := l.check(price, size, l.position-size); err != nil {
		return TradeLogEntry{}, fmt.Errorf("domain.Ledger.Sell: %w", err)
	}
	return l.sell(at, price, size), nil
}

// CloseAll aplana la posición: vende al bid si está long, compra al ask si está short.
// Siempre mueve hacia cero, así que no aplica el chequeo de capacidad.
// Devuelve nil si ya estaba plano.
func (l *Ledger) CloseAll(at time.Time, bid, ask int) *TradeLogEntry {
	var e TradeLogEntry
	switch {
	case l.position > 0:
		e = l.sell(at, bid, l.position)
	case l.position < 0:
		e = l.buy(at, ask, -l.position)
	default:
		return nil
	}
	return &e
}

// OpeningCost es el cash que consume la parte de apertura de una orden
// (la parte de cover genera cash, no lo consume).
func (s LedgerState) OpeningCost(action TradeAction, price, size int) decimal.Decimal {
	var open int
	var unit decimal.Decimal
	switch action {
	case ActionBuy:
		open = size - min(size, max(0, -s.Position))
		unit = legValue(1, price)
	default:
		open = size - min(size, max(0, s.Position))
		unit = legValue(1, 100-price)
	}
	return unit.Mul(decimal.NewFromInt(int64(open)))
}

func (l *Ledger) check(price, size, next int) error {
	if price < 0 || price > 100 {
		return fmt.Errorf("price %d out of [0,100]", price)
	}
	if size <= 0 {
		return fmt.Errorf("size must be positive, got %d", size)
	}
	if next < l.min || next > l.max {
		return fmt.Errorf("position %d outside [%d,%d]: %w", next, l.min, l.max, ErrCapacityExceeded)
	}
	return nil
}

func (l *Ledger) buy(at time.Time, price, size int) TradeLogEntry {
	remaining := size
	covered := 0
	if l.position < 0 {
		covered = min(remaining, -l.position)
		l.position += covered
		l.cash = l.cash.Add(legValue(covered, 100-price))
		remaining -= covered
	}
	if remaining > 0 {
		l.position += remaining
		l.cash = l.cash.Sub(legValue(remaining, price))
	}
	return l.record(at, ActionBuy, price, size, covered, remaining)
}

func (l *Ledger) sell(at time.Time, price, size int) TradeLogEntry {
	remaining := size
	covered := 0
	if l.position > 0 {
		covered = min(remaining, l.position)
		l.position -= covered
		l.cash = l.cash.Add(legValue(covered, price))
		remaining -= covered
	}
	if remaining > 0 {
		l.position -= remaining
		l.cash = l.cash.Sub(legValue(remaining, 100-price))
	}
	return l.record(at, ActionSell, price, size, covered, remaining)
}

func (l *Ledger) record(at time.Time, action TradeAction, price, size, covered, opened int) TradeLogEntry {
	e := TradeLogEntry{
		ID:       uuid.NewString(),
		At:       at,
		Action:   action,
		Price:    price,
		Size:     size,
		Covered:  covered,
		Opened:   opened,
		Position: l.position,
		Cash:     l.cash,
	}
	l.log = append(l.log, e)
	return e
}

// legValue = round(qty*cents/100, 2)
func legValue(qty, cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(qty * cents)).Div(hundred).Round(2)
}
