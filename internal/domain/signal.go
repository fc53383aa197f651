package domain

import "fmt"

// Direction es la decisión de la estrategia para un tick.
type Direction int

const (
	Hold Direction = iota
	Buy
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Sign devuelve +1, -1 o 0; es el formato que persiste el store.
func (d Direction) Sign() int {
	switch d {
	case Buy:
		return 1
	case Sell:
		return -1
	}
	return 0
}

// Signal es la salida de la estrategia. Size es 0 si Direction es Hold.
// Reason explica por qué no se opera (vacío si hay trade).
type Signal struct {
	Direction Direction
	Size      int
	Edge      float64
	Reason    string
}

// HoldSignal construye un Hold con motivo.
func HoldSignal(reason string) Signal {
	return Signal{Direction: Hold, Reason: reason}
}

// IsTrade devuelve true si hay que ejecutar algo.
func (s Signal) IsTrade() bool { return s.Direction != Hold && s.Size > 0 }

func (s Signal) String() string {
	if !s.IsTrade() {
		if s.Reason != "" {
			return "hold(" + s.Reason + ")"
		}
		return "hold"
	}
	return fmt.Sprintf("%s x%d (edge %.2f)", s.Direction, s.Size, s.Edge)
}
