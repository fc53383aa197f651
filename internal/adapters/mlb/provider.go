package mlb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// ErrGameNotFound: ningún partido del calendario coincide con el ticker.
var ErrGameNotFound = errors.New("game not found")

// GameState implementa ports.GameProvider. Con at distinto de cero pide el
// feed en ese timecode (modo backtest).
func (c *Client) GameState(ctx context.Context, gameID string, at time.Time) (domain.GameSnapshot, error) {
	var q url.Values
	if !at.IsZero() {
		q = url.Values{"timecode": {at.UTC().Format(timecodeLayout)}}
	}
	var feed liveFeed
	if err := c.get(ctx, "/api/v1.1/game/"+url.PathEscape(gameID)+"/feed/live", q, &feed); err != nil {
		return domain.GameSnapshot{}, fmt.Errorf("mlb.GameState %s: %w", gameID, err)
	}
	snap := mapLiveFeed(feed)
	snap.GameID = gameID
	snap.At = at
	return snap, nil
}

// mapLiveFeed aplana el feed. El conteo sale de currentPlay (que va un evento
// atrasado; el tracker lo corrige) y cae al linescore si no hay jugada.
func mapLiveFeed(f liveFeed) domain.GameSnapshot {
	ls := f.LiveData.Linescore
	snap := domain.GameSnapshot{
		Status:    normalizeStatus(f.GameData.Status),
		Inning:    ls.CurrentInning,
		Half:      halfOf(ls.InningHalf, ls.IsTopInning),
		Outs:      ls.Outs,
		Balls:     ls.Balls,
		Strikes:   ls.Strikes,
		HomeScore: ls.Teams.Home.Runs,
		AwayScore: ls.Teams.Away.Runs,
	}

	if cp := f.LiveData.Plays.CurrentPlay; cp != nil {
		if cp.About.Inning > 0 {
			snap.Inning = cp.About.Inning
			snap.Half = halfOf(cp.About.HalfInning, nil)
		}
		snap.Outs = cp.Count.Outs
		snap.Balls = cp.Count.Balls
		snap.Strikes = cp.Count.Strikes
		if ls.Offense == nil {
			snap.Runners = runnersFromIndex(cp.RunnerIndex)
		}
	}
	if ls.Offense != nil {
		snap.Runners = domain.Runners{
			First:  ls.Offense.First != nil,
			Second: ls.Offense.Second != nil,
			Third:  ls.Offense.Third != nil,
		}
	}
	return snap
}

// runnersFromIndex: 0 es el bateador, 1-3 las bases ocupadas.
func runnersFromIndex(idx []int) domain.Runners {
	var r domain.Runners
	for _, i := range idx {
		switch i {
		case 1:
			r.First = true
		case 2:
			r.Second = true
		case 3:
			r.Third = true
		}
	}
	return r
}

func halfOf(s string, isTop *bool) domain.Half {
	switch strings.ToLower(s) {
	case "top":
		return domain.HalfTop
	case "bottom":
		return domain.HalfBottom
	}
	if isTop != nil && !*isTop {
		return domain.HalfBottom
	}
	return domain.HalfTop
}

// normalizeStatus traduce los estados detallados de la API a las cuatro
// fases conocidas. Lo que no reconoce se devuelve tal cual para que el
// tracker lo rechace.
func normalizeStatus(s gameStatus) string {
	d := s.DetailedState
	switch {
	case d == "Pre-Game", d == "Scheduled", d == "Warmup":
		return string(domain.PhasePreGame)
	case d == "In Progress", strings.HasPrefix(d, "Manager challenge"), strings.HasPrefix(d, "Umpire review"):
		return string(domain.PhaseInProgress)
	case strings.HasPrefix(d, "Delayed"):
		return string(domain.PhaseDelayed)
	case d == "Final", d == "Game Over", strings.HasPrefix(d, "Completed Early"):
		return string(domain.PhaseFinal)
	case d == "" && s.AbstractGameState == "Live":
		return string(domain.PhaseInProgress)
	}
	return d
}

// FindGame implementa ports.GameLocator: busca en el calendario del día el
// partido entre los dos equipos del ticker, en cualquier orden local/visitante.
func (c *Client) FindGame(ctx context.Context, info domain.TickerInfo) (domain.Game, error) {
	if _, ok := teamNames[info.Team]; !ok {
		return domain.Game{}, fmt.Errorf("mlb.FindGame: unknown team code %q", info.Team)
	}
	if _, ok := teamNames[info.Opponent]; !ok {
		return domain.Game{}, fmt.Errorf("mlb.FindGame: unknown team code %q", info.Opponent)
	}

	day := info.Date.Format("2006-01-02")
	q := url.Values{"sportId": {"1"}, "date": {day}}
	var resp scheduleResponse
	if err := c.get(ctx, "/api/v1/schedule", q, &resp); err != nil {
		return domain.Game{}, fmt.Errorf("mlb.FindGame: schedule %s: %w", day, err)
	}

	for _, d := range resp.Dates {
		for _, g := range d.Games {
			if info.DoubleheaderG2 && g.GameNumber != 2 {
				continue
			}
			if !info.DoubleheaderG2 && g.GameNumber > 1 {
				continue
			}
			home, away := g.Teams.Home.Team.Name, g.Teams.Away.Team.Name
			switch {
			case isTeam(info.Team, home) && isTeam(info.Opponent, away):
				return mapGame(g, info.Team, info.Opponent), nil
			case isTeam(info.Opponent, home) && isTeam(info.Team, away):
				return mapGame(g, info.Opponent, info.Team), nil
			}
		}
	}
	return domain.Game{}, fmt.Errorf("mlb.FindGame %s on %s: %w", info.Ticker, day, ErrGameNotFound)
}

func mapGame(g scheduledGame, home, away string) domain.Game {
	game := domain.Game{
		ID:       strconv.FormatInt(g.GamePk, 10),
		HomeTeam: home,
		AwayTeam: away,
		Status:   normalizeStatus(g.Status),
	}
	if t, err := time.Parse(time.RFC3339, g.GameDate); err == nil {
		game.StartTime = t.UTC()
	}
	if t, err := time.Parse("2006-01-02", g.OfficialDate); err == nil {
		game.Date = t
	}
	return game
}

// GameTimestamps devuelve los timecodes del feed del partido, ordenados.
func (c *Client) GameTimestamps(ctx context.Context, gameID string) ([]time.Time, error) {
	var raw []string
	if err := c.get(ctx, "/api/v1.1/game/"+url.PathEscape(gameID)+"/feed/live/timestamps", nil, &raw); err != nil {
		return nil, fmt.Errorf("mlb.GameTimestamps %s: %w", gameID, err)
	}
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(timecodeLayout, s)
		if err != nil {
			c.logger.Debug("skipping bad timecode", "game_id", gameID, "timecode", s)
			continue
		}
		out = append(out, t.UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
