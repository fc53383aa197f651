package ports

import (
	"context"

	"github.com/hgreenfield1/Kalshi/internal/domain"
)

// PredictionStore persiste un registro por tick evaluado.
type PredictionStore interface {
	// SavePredictions guarda los registros en una sola transacción.
	SavePredictions(ctx context.Context, records []domain.PredictionRecord) error

	// GetPredictionsByGame devuelve los registros de un partido ordenados por timestamp.
	GetPredictionsByGame(ctx context.Context, gameID string) ([]domain.PredictionRecord, error)

	// StrategyPerformance agrega resultados por estrategia y versión.
	StrategyPerformance(ctx context.Context) ([]domain.StrategyPerformance, error)

	// CalibrationBins agrupa las predicciones con resultado conocido en n rangos.
	// strategyVersion vacío incluye todas.
	CalibrationBins(ctx context.Context, strategyVersion string, n int) ([]domain.CalibrationBin, error)

	// DeleteByStrategy borra los registros de una estrategia y versión.
	DeleteByStrategy(ctx context.Context, name, version string) (int64, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
