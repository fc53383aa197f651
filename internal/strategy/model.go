package strategy

import "github.com/hgreenfield1/Kalshi/internal/domain"

// PredictionModel convierte el estado del partido en la probabilidad blended del YES local.
type PredictionModel interface {
	Version() string
	Predict(g domain.GameState) domain.Probability
}

// AlphaDecay pondera pregame y live con decaimiento exponencial en el tiempo
// y confianza creciente cuando la live se aleja de 50.
type AlphaDecay struct {
	AlphaT    float64
	AlphaProb float64
}

// NewAlphaDecay crea el modelo. Valores <= 0 usan los defaults (6, 12).
func NewAlphaDecay(alphaT, alphaProb float64) AlphaDecay {
	if alphaT <= 0 {
		alphaT = 6
	}
	if alphaProb <= 0 {
		alphaProb = 12
	}
	return AlphaDecay{AlphaT: alphaT, AlphaProb: alphaProb}
}

// Version implementa PredictionModel.
func (m AlphaDecay) Version() string { return "1.1.0" }

// Predict implementa PredictionModel.
func (m AlphaDecay) Predict(g domain.GameState) domain.Probability {
	return domain.Blend(g.PctPlayed, g.Pregame, g.Live, m.AlphaT, m.AlphaProb)
}
