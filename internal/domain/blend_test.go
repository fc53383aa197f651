package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_StartOfGameIsPregame(t *testing.T) {
	p := Blend(0, KnownProbability(58), KnownProbability(90), 6, 12)
	v, ok := p.Value()
	assert.True(t, ok)
	assert.Equal(t, 58.0, v)
}

func TestBlend_LateAndDecisiveIsLive(t *testing.T) {
	p := Blend(1, KnownProbability(58), KnownProbability(98), 6, 12)
	v, ok := p.Value()
	assert.True(t, ok)
	assert.InDelta(t, 98, v, 1.0)
}

func TestBlend_LiveAtFiftyKeepsPregame(t *testing.T) {
	// confidence = 0 at 50 so elapsed time alone does not move the blend
	p := Blend(0.9, KnownProbability(62), KnownProbability(50), 6, 12)
	v, _ := p.Value()
	assert.Equal(t, 62.0, v)
}

func TestBlend_BetweenInputsAndRounded(t *testing.T) {
	p := Blend(0.5, KnownProbability(40), KnownProbability(80), 6, 12)
	v, ok := p.Value()
	assert.True(t, ok)
	assert.Greater(t, v, 40.0)
	assert.Less(t, v, 80.0)
	assert.Equal(t, round2(v), v)
}

func TestBlend_UnavailableInputs(t *testing.T) {
	p := Blend(0.5, KnownProbability(40), UnavailableProbability("no table row"), 6, 12)
	assert.False(t, p.Available())
	assert.Contains(t, p.Reason(), "no table row")

	p = Blend(0.5, UnavailableProbability("pregame not fetched"), KnownProbability(70), 6, 12)
	assert.False(t, p.Available())
}

func TestProbability_ZeroValueIsUnavailable(t *testing.T) {
	var p Probability
	_, ok := p.Value()
	assert.False(t, ok)
	assert.Equal(t, "unavailable", p.Reason())
	assert.Equal(t, 100.0, mustValue(KnownProbability(130)))
}

func mustValue(p Probability) float64 {
	v, _ := p.Value()
	return v
}
