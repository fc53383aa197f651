package strategy

import (
	"sort"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// Input es todo lo que una estrategia necesita para decidir en un tick.
type Input struct {
	Now      time.Time
	Prob     domain.Probability // probabilidad blended del YES
	Bid      domain.Quote
	Ask      domain.Quote
	Ledger   domain.LedgerState
	LastBuy  time.Time // zero = nunca
	LastSell time.Time // zero = nunca
}

// Strategy define el contrato de las políticas de señal.
// Cada preset es la misma política con otros parámetros.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// Version se persiste con cada predicción para poder comparar versiones.
	Version() string

	// PositionBounds devuelve los límites [min, max] de posición.
	PositionBounds() (min, max int)

	// Decide devuelve Buy/Sell/Hold para el tick. Nunca devuelve un trade
	// que deje la posición fuera de límites o que el cash no cubra.
	Decide(in Input) domain.Signal
}

// Registry mantiene las estrategias disponibles indexadas por nombre.
type Registry map[string]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// DefaultRegistry devuelve un registry con los tres presets.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(Simple())
	r.Register(Conservative())
	r.Register(AggressiveValue())
	return r
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Name()] = s
}

// Get devuelve la estrategia por nombre.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// Names devuelve los nombres registrados, ordenados.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
