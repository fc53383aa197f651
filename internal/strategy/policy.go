package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// Guard es un rango abierto (Above, Below) en el que el precio debe estar para operar.
type Guard struct {
	Above int
	Below int
}

func (g Guard) allows(price int) bool {
	return price > g.Above && price < g.Below
}

// SizeFunc calcula el tamaño a partir del edge en puntos de probabilidad.
type SizeFunc func(edge float64) int

// FixedSize siempre opera n contratos.
func FixedSize(n int) SizeFunc {
	return func(float64) int { return n }
}

// ScaledSize opera min(maxSize, max(1, floor(edge/per))).
func ScaledSize(per float64, maxSize int) SizeFunc {
	return func(edge float64) int {
		n := int(math.Floor(edge / per))
		return min(maxSize, max(1, n))
	}
}

// Params configura la política.
type Params struct {
	Name        string
	Version     string
	Edge        float64       // puntos mínimos entre prob y precio
	Cooldown    time.Duration // entre trades del mismo lado, en minutos enteros
	SellGuard   Guard         // aplica al bid
	BuyGuard    Guard         // aplica al ask
	Size        SizeFunc
	MinPosition int
	MaxPosition int
}

// Policy es la política edge + guards + cooldown + capacidad.
type Policy struct {
	p Params
}

// New crea una política. Params sin Size opera 1 contrato.
func New(p Params) *Policy {
	if p.Size == nil {
		p.Size = FixedSize(1)
	}
	return &Policy{p: p}
}

// Name implementa Strategy.
func (s *Policy) Name() string { return s.p.Name }

// Version implementa Strategy.
func (s *Policy) Version() string { return s.p.Version }

// PositionBounds implementa Strategy.
func (s *Policy) PositionBounds() (int, int) { return s.p.MinPosition, s.p.MaxPosition }

// Params devuelve una copia de la configuración.
func (s *Policy) Params() Params { return s.p }

// Decide implementa Strategy. Evalúa primero la venta y después la compra.
func (s *Policy) Decide(in Input) domain.Signal {
	prob, ok := in.Prob.Value()
	if !ok {
		return domain.HoldSignal("probability unavailable")
	}
	if !in.Bid.Valid || !in.Ask.Valid {
		return domain.HoldSignal("no bid/ask")
	}

	var skipped string
	if edge := float64(in.Bid.Price) - prob; edge > s.p.Edge && s.p.SellGuard.allows(in.Bid.Price) {
		sig, reason := s.try(domain.ActionSell, in.Bid.Price, edge, in, in.LastSell)
		if sig.IsTrade() {
			return sig
		}
		skipped = reason
	}
	if edge := prob - float64(in.Ask.Price); edge > s.p.Edge && s.p.BuyGuard.allows(in.Ask.Price) {
		sig, reason := s.try(domain.ActionBuy, in.Ask.Price, edge, in, in.LastBuy)
		if sig.IsTrade() {
			return sig
		}
		skipped = reason
	}
	if skipped != "" {
		return domain.HoldSignal(skipped)
	}
	return domain.HoldSignal("")
}

// try aplica capacidad, cash y cooldown a una oportunidad con edge suficiente.
func (s *Policy) try(action domain.TradeAction, price int, edge float64, in Input, last time.Time) (domain.Signal, string) {
	room := s.p.MaxPosition - in.Ledger.Position
	dir := domain.Buy
	if action == domain.ActionSell {
		room = in.Ledger.Position - s.p.MinPosition
		dir = domain.Sell
	}
	if room <= 0 {
		return domain.Signal{}, fmt.Sprintf("%s: position %d at limit", action, in.Ledger.Position)
	}
	size := min(s.p.Size(edge), room)
	if size <= 0 {
		return domain.Signal{}, fmt.Sprintf("%s: size 0", action)
	}

	if cost := in.Ledger.OpeningCost(action, price, size); in.Ledger.Cash.LessThan(cost) {
		return domain.Signal{}, fmt.Sprintf("%s: insufficient cash %s < %s", action, in.Ledger.Cash.StringFixed(2), cost.StringFixed(2))
	}

	if !last.IsZero() {
		elapsed := time.Duration(int64(in.Now.Sub(last)/time.Minute)) * time.Minute
		if elapsed < s.p.Cooldown {
			return domain.Signal{}, fmt.Sprintf("%s: cooldown %s < %s", action, elapsed, s.p.Cooldown)
		}
	}

	return domain.Signal{Direction: dir, Size: size, Edge: edge}, ""
}
