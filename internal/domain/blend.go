package domain

import "math"

// Blend combina la probabilidad pregame con la live según el avance t ∈ [0,1].
//
//	baseWeight = exp(-alphaT*t)
//	confidence = 1 - exp(-alphaProb*|live-50|/100)
//	liveWeight = (1-baseWeight)*confidence
//	preWeight  = 1 - liveWeight
//
// Devuelve Unavailable si falta live o pregame. El resultado se redondea a 2 decimales.
func Blend(t float64, pre, live Probability, alphaT, alphaProb float64) Probability {
	pLive, ok := live.Value()
	if !ok {
		return UnavailableProbability("live probability: " + live.Reason())
	}
	pPre, ok := pre.Value()
	if !ok {
		return UnavailableProbability("pregame probability: " + pre.Reason())
	}

	t = math.Max(0, math.Min(1, t))
	baseWeight := math.Exp(-alphaT * t)
	confidence := 1 - math.Exp(-alphaProb*math.Abs(pLive-50)/100)
	liveWeight := (1 - baseWeight) * confidence
	preWeight := 1 - liveWeight

	total := preWeight + liveWeight
	preWeight /= total
	liveWeight /= total

	return KnownProbability(round2(preWeight*pPre + liveWeight*pLive))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
