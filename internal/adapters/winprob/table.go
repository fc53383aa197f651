// Package winprob carga la tabla histórica de win expectancy del local y
// implementa ports.WinProbabilityTable.
package winprob

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// key identifica una situación: lado que batea, entrada, outs, base-state, diferencia home-away.
type key struct {
	side    string
	inning  int
	outs    int
	base    domain.BaseState
	netDiff int
}

type entry struct {
	total int
	wins  int
}

// Table es inmutable una vez cargada; Lookup es seguro para uso concurrente.
type Table struct {
	rows map[key]entry
}

// Load lee la tabla desde un fichero.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("winprob.Load: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("winprob.Load %s: %w", path, err)
	}
	return t, nil
}

// Parse lee filas "V"|"H",inning,outs,baseState,scoreDiff,total,wins.
// Líneas vacías o que empiezan por # se ignoran.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &Table{rows: make(map[key]entry)}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 7 {
			return nil, fmt.Errorf("line %d: expected 7 fields, got %d", line, len(rec))
		}
		side := strings.ToUpper(strings.TrimSpace(rec[0]))
		if side != "V" && side != "H" {
			return nil, fmt.Errorf("line %d: bad side %q", line, rec[0])
		}
		var n [6]int
		for i := range n {
			v, err := strconv.Atoi(strings.TrimSpace(rec[i+1]))
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+2, err)
			}
			n[i] = v
		}
		k := key{side: side, inning: n[0], outs: n[1], base: domain.BaseState(n[2]), netDiff: n[3]}
		t.rows[k] = entry{total: n[4], wins: n[5]}
	}
	return t, nil
}

// Len devuelve el número de situaciones cargadas.
func (t *Table) Len() int { return len(t.rows) }

// Lookup implementa ports.WinProbabilityTable: wins/total*100, o Unavailable
// si la situación no está en la tabla o no tiene partidos.
func (t *Table) Lookup(half domain.Half, inning, outs int, base domain.BaseState, netScore int) domain.Probability {
	k := key{side: half.BattingSide(), inning: inning, outs: outs, base: base, netDiff: netScore}
	e, ok := t.rows[k]
	if !ok {
		return domain.UnavailableProbability(fmt.Sprintf("no table row for %s,%d,%d,%d,%d", k.side, inning, outs, base, netScore))
	}
	if e.total <= 0 {
		return domain.UnavailableProbability("table row has no games")
	}
	return domain.KnownProbability(float64(e.wins) / float64(e.total) * 100)
}
