package ports

import "github.com/hgreenfield1/Kalshi/internal/domain"

// Reporter presenta resultados al usuario.
// En la implementación de consola, imprime tablas formateadas.
type Reporter interface {
	PrintBacktest(result domain.SessionResult) error
	PrintPerformance(perf []domain.StrategyPerformance) error
	PrintCalibration(bins []domain.CalibrationBin) error
}
