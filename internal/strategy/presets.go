package strategy

import "time"

const (
	SimpleName          = "simple"
	ConservativeName    = "conservative"
	AggressiveValueName = "aggressive_value"
)

// Simple: edge 15, cooldown 10 min, 1 contrato, vende con bid < 85 y compra con ask > 15.
func Simple() *Policy {
	return New(Params{
		Name:        SimpleName,
		Version:     "1.1.0",
		Edge:        15,
		Cooldown:    10 * time.Minute,
		SellGuard:   Guard{Above: 0, Below: 85},
		BuyGuard:    Guard{Above: 15, Below: 100},
		Size:        FixedSize(1),
		MinPosition: -10,
		MaxPosition: 10,
	})
}

// Conservative: edge 20, cooldown 15 min, 1 contrato, solo con precios en (20, 80).
func Conservative() *Policy {
	return New(Params{
		Name:        ConservativeName,
		Version:     "1.0.0",
		Edge:        20,
		Cooldown:    15 * time.Minute,
		SellGuard:   Guard{Above: 20, Below: 80},
		BuyGuard:    Guard{Above: 20, Below: 80},
		Size:        FixedSize(1),
		MinPosition: -5,
		MaxPosition: 5,
	})
}

// AggressiveValue: edge 5, cooldown 5 min, tamaño min(3, max(1, floor(edge/10))).
func AggressiveValue() *Policy {
	return New(Params{
		Name:        AggressiveValueName,
		Version:     "1.0.0",
		Edge:        5,
		Cooldown:    5 * time.Minute,
		SellGuard:   Guard{Above: 0, Below: 90},
		BuyGuard:    Guard{Above: 10, Below: 100},
		Size:        ScaledSize(10, 3),
		MinPosition: -10,
		MaxPosition: 10,
	})
}

// WithBounds devuelve una copia de la política con otros límites de posición.
func WithBounds(s *Policy, minPosition, maxPosition int) *Policy {
	p := s.Params()
	p.MinPosition = minPosition
	p.MaxPosition = maxPosition
	return New(p)
}
