package storage

// sqlite.go: histórico de predicciones por tick.
//
// Estrategia:
//   - `predictions`: una fila por tick evaluado, por run y estrategia.
//     El resultado real (actual_outcome) se rellena al liquidar, antes de guardar.
//   - Todo el lote de una sesión se escribe en una sola transacción.
//   - Los agregados de rendimiento toman el cash del ÚLTIMO registro de cada
//     (run, partido, estrategia) como cash final.
//   - Timestamps en texto UTC de ancho fijo para que ORDER BY sea cronológico.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id                   TEXT    NOT NULL,
    game_id                  TEXT    NOT NULL,
    ticker                   TEXT    NOT NULL DEFAULT '',
    timestamp                TEXT    NOT NULL,
    predicted_prob           REAL,
    bid_price                INTEGER,
    ask_price                INTEGER,
    cash                     REAL    NOT NULL,
    initial_cash             REAL    NOT NULL DEFAULT 0,
    positions                INTEGER NOT NULL DEFAULT 0,
    signal                   INTEGER,
    actual_outcome           INTEGER,
    prediction_model_version TEXT    NOT NULL DEFAULT '',
    strategy_name            TEXT    NOT NULL DEFAULT '',
    strategy_version         TEXT    NOT NULL DEFAULT '',
    created_at               TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pred_game     ON predictions(game_id);
CREATE INDEX IF NOT EXISTS idx_pred_ts       ON predictions(timestamp);
CREATE INDEX IF NOT EXISTS idx_pred_strategy ON predictions(strategy_version);
CREATE INDEX IF NOT EXISTS idx_pred_model    ON predictions(prediction_model_version);
`

// Ancho fijo: el orden lexicográfico coincide con el cronológico.
const tsLayout = "2006-01-02T15:04:05.000000Z"

// SQLiteStorage implementa ports.PredictionStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db, now: time.Now}, nil
}

// SavePredictions guarda el lote completo en una transacción.
func (s *SQLiteStorage) SavePredictions(ctx context.Context, records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePredictions: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (
			run_id, game_id, ticker, timestamp, predicted_prob, bid_price, ask_price,
			cash, initial_cash, positions, signal, actual_outcome,
			prediction_model_version, strategy_name, strategy_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SavePredictions: prepare: %w", err)
	}
	defer stmt.Close()

	created := s.now().UTC().Format(tsLayout)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.RunID,
			r.GameID,
			r.Ticker,
			r.Timestamp.UTC().Format(tsLayout),
			nullFloat(r.PredictedProb),
			nullInt(r.BidPrice),
			nullInt(r.AskPrice),
			r.Cash,
			r.InitialCash,
			r.Positions,
			nullInt(r.Signal),
			nullBool(r.ActualOutcome),
			r.PredictionModelVersion,
			r.StrategyName,
			r.StrategyVersion,
			created,
		); err != nil {
			return fmt.Errorf("storage.SavePredictions: insert %s@%s: %w", r.GameID, r.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePredictions: commit: %w", err)
	}
	return nil
}

// GetPredictionsByGame devuelve los registros de un partido en orden cronológico.
func (s *SQLiteStorage) GetPredictionsByGame(ctx context.Context, gameID string) ([]domain.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, game_id, ticker, timestamp, predicted_prob, bid_price, ask_price,
		       cash, initial_cash, positions, signal, actual_outcome,
		       prediction_model_version, strategy_name, strategy_version
		FROM predictions
		WHERE game_id = ?
		ORDER BY timestamp ASC, id ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPredictionsByGame: query: %w", err)
	}
	defer rows.Close()

	var out []domain.PredictionRecord
	for rows.Next() {
		var (
			r        domain.PredictionRecord
			ts       string
			prob     sql.NullFloat64
			bid, ask sql.NullInt64
			signal   sql.NullInt64
			outcome  sql.NullInt64
		)
		if err := rows.Scan(
			&r.RunID, &r.GameID, &r.Ticker, &ts, &prob, &bid, &ask,
			&r.Cash, &r.InitialCash, &r.Positions, &signal, &outcome,
			&r.PredictionModelVersion, &r.StrategyName, &r.StrategyVersion,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPredictionsByGame: scan row: %w", err)
		}
		r.Timestamp, err = time.Parse(tsLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("storage.GetPredictionsByGame: timestamp %q: %w", ts, err)
		}
		if prob.Valid {
			r.PredictedProb = &prob.Float64
		}
		r.BidPrice = intPtr(bid)
		r.AskPrice = intPtr(ask)
		r.Signal = intPtr(signal)
		if outcome.Valid {
			won := outcome.Int64 == 1
			r.ActualOutcome = &won
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type perfKey struct{ name, version, model string }

// StrategyPerformance agrega por (estrategia, versión, modelo).
// Accuracy cuenta predicciones del lado correcto de 50; 50 exacto nunca acierta.
func (s *SQLiteStorage) StrategyPerformance(ctx context.Context) ([]domain.StrategyPerformance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy_name, strategy_version, prediction_model_version,
		       COUNT(*),
		       COUNT(DISTINCT game_id),
		       COALESCE(AVG(CASE
		           WHEN predicted_prob IS NULL OR actual_outcome IS NULL THEN NULL
		           WHEN (actual_outcome = 1 AND predicted_prob > 50)
		             OR (actual_outcome = 0 AND predicted_prob < 50) THEN 1.0
		           ELSE 0.0 END), 0) * 100,
		       COALESCE(SUM(CASE WHEN signal IN (1, -1) THEN 1 ELSE 0 END), 0)
		FROM predictions
		GROUP BY strategy_name, strategy_version, prediction_model_version
		ORDER BY strategy_name, strategy_version, prediction_model_version
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.StrategyPerformance: query: %w", err)
	}
	defer rows.Close()

	var out []domain.StrategyPerformance
	index := make(map[perfKey]int)
	for rows.Next() {
		var p domain.StrategyPerformance
		if err := rows.Scan(&p.StrategyName, &p.StrategyVersion, &p.ModelVersion,
			&p.Predictions, &p.Games, &p.Accuracy, &p.Trades); err != nil {
			return nil, fmt.Errorf("storage.StrategyPerformance: scan row: %w", err)
		}
		index[perfKey{p.StrategyName, p.StrategyVersion, p.ModelVersion}] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.StrategyPerformance: rows: %w", err)
	}
	rows.Close()

	if err := s.fillFinalCash(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

// fillFinalCash completa los campos de cash con el último registro de cada sesión.
func (s *SQLiteStorage) fillFinalCash(ctx context.Context, perf []domain.StrategyPerformance, index map[perfKey]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy_name, strategy_version, prediction_model_version, cash, initial_cash
		FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY run_id, game_id, strategy_name, strategy_version
				ORDER BY timestamp DESC, id DESC
			) AS rn
			FROM predictions
		)
		WHERE rn = 1
	`)
	if err != nil {
		return fmt.Errorf("storage.StrategyPerformance: final cash query: %w", err)
	}
	defer rows.Close()

	type acc struct {
		n, wins   int
		sum, init float64
		min, max  float64
	}
	accs := make([]acc, len(perf))
	for rows.Next() {
		var k perfKey
		var cash, initial float64
		if err := rows.Scan(&k.name, &k.version, &k.model, &cash, &initial); err != nil {
			return fmt.Errorf("storage.StrategyPerformance: scan final cash: %w", err)
		}
		i, ok := index[k]
		if !ok {
			continue
		}
		a := &accs[i]
		if a.n == 0 || cash < a.min {
			a.min = cash
		}
		if a.n == 0 || cash > a.max {
			a.max = cash
		}
		a.n++
		a.sum += cash
		a.init += initial
		if cash > initial {
			a.wins++
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("storage.StrategyPerformance: final cash rows: %w", err)
	}

	for i, a := range accs {
		if a.n == 0 {
			continue
		}
		p := &perf[i]
		p.AvgFinalCash = a.sum / float64(a.n)
		p.MinFinalCash = a.min
		p.MaxFinalCash = a.max
		p.WinRate = float64(a.wins) / float64(a.n) * 100
		if a.init > 0 {
			p.ROI = (a.sum - a.init) / a.init * 100
		}
	}
	return nil
}

// CalibrationBins agrupa en n rangos iguales de [0,100] las predicciones con
// resultado conocido. Solo devuelve rangos con al menos una predicción.
func (s *SQLiteStorage) CalibrationBins(ctx context.Context, strategyVersion string, n int) ([]domain.CalibrationBin, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT predicted_prob, actual_outcome
		FROM predictions
		WHERE predicted_prob IS NOT NULL
		  AND actual_outcome IS NOT NULL
		  AND (? = '' OR strategy_version = ?)
	`, strategyVersion, strategyVersion)
	if err != nil {
		return nil, fmt.Errorf("storage.CalibrationBins: query: %w", err)
	}
	defer rows.Close()

	width := 100.0 / float64(n)
	bins := make([]domain.CalibrationBin, n)
	wins := make([]int, n)
	for i := range bins {
		bins[i].Lower = float64(i) * width
		bins[i].Upper = float64(i+1) * width
	}
	for rows.Next() {
		var prob float64
		var outcome int
		if err := rows.Scan(&prob, &outcome); err != nil {
			return nil, fmt.Errorf("storage.CalibrationBins: scan row: %w", err)
		}
		i := min(max(int(prob/width), 0), n-1) // 100 cae en el último rango
		bins[i].Count++
		bins[i].AvgPredicted += prob
		if outcome == 1 {
			wins[i]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.CalibrationBins: rows: %w", err)
	}

	var out []domain.CalibrationBin
	for i, b := range bins {
		if b.Count == 0 {
			continue
		}
		b.AvgPredicted /= float64(b.Count)
		b.ActualWinRate = float64(wins[i]) / float64(b.Count) * 100
		out = append(out, b)
	}
	return out, nil
}

// DeleteByStrategy borra todos los registros de una estrategia y versión.
func (s *SQLiteStorage) DeleteByStrategy(ctx context.Context, name, version string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM predictions WHERE strategy_name = ? AND strategy_version = ?`, name, version)
	if err != nil {
		return 0, fmt.Errorf("storage.DeleteByStrategy: %s/%s: %w", name, version, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage.DeleteByStrategy: rows affected: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
