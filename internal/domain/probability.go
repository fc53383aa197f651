package domain

import (
	"fmt"
	"math"
)

// Probability es una estimación en puntos de probabilidad [0,100] que puede
// no estar disponible. El zero value es "unavailable" sin motivo.
type Probability struct {
	value  float64
	ok     bool
	reason string
}

// KnownProbability crea una probabilidad disponible, acotada a [0,100].
func KnownProbability(v float64) Probability {
	return Probability{value: math.Max(0, math.Min(100, v)), ok: true}
}

// UnavailableProbability crea una probabilidad no disponible con su motivo.
func UnavailableProbability(reason string) Probability {
	return Probability{reason: reason}
}

// Value devuelve el valor y si está disponible.
func (p Probability) Value() (float64, bool) {
	return p.value, p.ok
}

// Available devuelve true si hay valor.
func (p Probability) Available() bool { return p.ok }

// Reason explica por qué no hay valor. Vacío si está disponible.
func (p Probability) Reason() string {
	if p.ok {
		return ""
	}
	if p.reason == "" {
		return "unavailable"
	}
	return p.reason
}

func (p Probability) String() string {
	if !p.ok {
		return "n/a(" + p.Reason() + ")"
	}
	return fmt.Sprintf("%.2f", p.value)
}

// Quote es un precio en centavos [0,100] que puede faltar (lado vacío del book,
// vela sin cierre).
type Quote struct {
	Price int
	Valid bool
}

// QuoteOf crea un Quote válido.
func QuoteOf(price int) Quote {
	return Quote{Price: price, Valid: true}
}

// NoQuote es el Quote ausente.
var NoQuote = Quote{}

func (q Quote) String() string {
	if !q.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%d", q.Price)
}

// Complement devuelve 100 - p, la probabilidad del lado contrario.
func (p Probability) Complement() Probability {
	if !p.ok {
		return p
	}
	return KnownProbability(100 - p.value)
}
