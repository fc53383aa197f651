package domain

import (
	"fmt"
	"math"
	"time"
)

// Phase es el estado del partido. Solo existen estas cuatro.
type Phase string

const (
	PhasePreGame    Phase = "Pre-Game"
	PhaseInProgress Phase = "In Progress"
	PhaseDelayed    Phase = "Delayed"
	PhaseFinal      Phase = "Final"
)

// ParsePhase valida el status ya normalizado por el provider.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhasePreGame, PhaseInProgress, PhaseDelayed, PhaseFinal:
		return p, nil
	}
	return "", fmt.Errorf("domain.ParsePhase: %q: %w", s, ErrUnsupportedPhase)
}

// Half es la mitad de la entrada.
type Half int

const (
	HalfTop Half = iota
	HalfBottom
)

func (h Half) String() string {
	if h == HalfBottom {
		return "bottom"
	}
	return "top"
}

// BattingSide devuelve "V" (visitante batea) o "H" (local batea),
// la clave que usan las tablas de win expectancy.
func (h Half) BattingSide() string {
	if h == HalfBottom {
		return "H"
	}
	return "V"
}

// Runners es la ocupación de bases.
type Runners struct {
	First  bool
	Second bool
	Third  bool
}

// BaseState enumera las 8 ocupaciones posibles: 1 = vacías ... 8 = llenas.
// 1B=2, 2B=3, 1B2B=4, 3B=5, 1B3B=6, 2B3B=7.
type BaseState int

const (
	BasesEmpty  BaseState = 1
	BasesLoaded BaseState = 8
)

// BaseStateOf decodifica la ocupación en su estado 1..8.
func BaseStateOf(r Runners) BaseState {
	s := 1
	if r.First {
		s++
	}
	if r.Second {
		s += 2
	}
	if r.Third {
		s += 4
	}
	return BaseState(s)
}

// Runners devuelve la ocupación correspondiente al estado.
func (b BaseState) Runners() Runners {
	n := int(b) - 1
	return Runners{First: n&1 != 0, Second: n&2 != 0, Third: n&4 != 0}
}

// Valid devuelve true si el estado está en 1..8.
func (b BaseState) Valid() bool { return b >= BasesEmpty && b <= BasesLoaded }

// GameSnapshot es lo que devuelve el provider externo para un instante,
// ya aplanado e independiente de su formato.
type GameSnapshot struct {
	GameID    string
	Status    string // normalizado a una Phase cuando el provider lo reconoce
	Inning    int
	Half      Half
	Outs      int
	Balls     int
	Strikes   int
	Runners   Runners
	HomeScore int
	AwayScore int
	At        time.Time
}

// GameState es el estado derivado que mantiene el tracker por partido.
type GameState struct {
	GameID    string
	Phase     Phase
	Inning    int
	Half      Half
	Outs      int
	Balls     int
	Strikes   int
	BaseState BaseState
	HomeScore int
	AwayScore int
	NetScore  int     // home - away
	PctPlayed float64 // [0,1]

	Pregame Probability
	Live    Probability

	UpdatedAt time.Time
}

// NewGameState devuelve el estado inicial: Pre-Game, primera entrada, bases vacías.
func NewGameState(gameID string) GameState {
	return GameState{
		GameID:    gameID,
		Phase:     PhasePreGame,
		Inning:    1,
		Half:      HalfTop,
		BaseState: BasesEmpty,
		Pregame:   UnavailableProbability("pregame not fetched"),
		Live:      UnavailableProbability("game not in progress"),
	}
}

// RollForward corrige el conteo que el feed reporta un evento atrasado:
// 3 strikes suman un out; 3 outs cambian de media entrada, y al pasar de
// bottom a top avanza la entrada. El cambio de media entrada limpia bases y bolas.
func (g *GameState) RollForward() {
	if g.Strikes >= 3 {
		g.Strikes = 0
		g.Balls = 0
		g.Outs++
	}
	if g.Outs >= 3 {
		g.Outs = 0
		g.Balls = 0
		g.BaseState = BasesEmpty
		if g.Half == HalfBottom {
			g.Half = HalfTop
			g.Inning++
		} else {
			g.Half = HalfBottom
		}
	}
}

// ComputePctPlayed = min(1, (inning-1)/9 + bottom/18 + outs/54 + strikes/162).
func (g GameState) ComputePctPlayed() float64 {
	bottom := 0.0
	if g.Half == HalfBottom {
		bottom = 1
	}
	pct := float64(g.Inning-1)/9 + bottom/18 + float64(g.Outs)/54 + float64(g.Strikes)/162
	return math.Max(0, math.Min(1, pct))
}

// HomeWon solo tiene sentido en Final.
func (g GameState) HomeWon() bool { return g.NetScore > 0 }

// SettlementPrice es el precio terminal del YES: 100 si gana el local, 0 si no.
func (g GameState) SettlementPrice() int {
	if g.HomeWon() {
		return 100
	}
	return 0
}

// Game identifica un partido en el provider externo.
type Game struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	Date      time.Time
	StartTime time.Time
	Status    string
}
