package ports

import (
	"context"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// GameProvider obtiene el estado de un partido desde el provider externo (MLB Stats API).
type GameProvider interface {
	// GameState devuelve el snapshot del partido en el instante at.
	// at.IsZero() significa "ahora".
	GameState(ctx context.Context, gameID string, at time.Time) (domain.GameSnapshot, error)
}

// GameLocator resuelve mercados a partidos. Lookup puro.
type GameLocator interface {
	// FindGame busca el partido que corresponde a un ticker ya parseado.
	FindGame(ctx context.Context, info domain.TickerInfo) (domain.Game, error)

	// GameTimestamps devuelve los timecodes registrados del partido, ordenados.
	GameTimestamps(ctx context.Context, gameID string) ([]time.Time, error)
}

// WinProbabilityTable es la tabla de win expectancy del local.
type WinProbabilityTable interface {
	// Lookup devuelve la probabilidad [0,100] de victoria del local o Unavailable
	// si la combinación no está en la tabla.
	Lookup(half domain.Half, inning, outs int, base domain.BaseState, netScore int) domain.Probability
}

// PregameSource obtiene la probabilidad pregame de un mercado ya fijado.
type PregameSource interface {
	PregameProbability(ctx context.Context, gameStart time.Time) (domain.Probability, error)
}
