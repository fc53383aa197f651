package domain

import "time"

// PredictionRecord es una fila por tick evaluado (se haya operado o no).
// Los campos opcionales son nil cuando el dato no estaba disponible.
type PredictionRecord struct {
	RunID                  string
	GameID                 string
	Ticker                 string
	Timestamp              time.Time
	PredictedProb          *float64
	BidPrice               *int
	AskPrice               *int
	Cash                   float64
	InitialCash            float64
	Positions              int
	Signal                 *int // +1 buy, -1 sell, 0 hold, nil si no se evaluó
	ActualOutcome          *bool
	PredictionModelVersion string
	StrategyName           string
	StrategyVersion        string
}

// StrategyPerformance agrega los resultados de una versión de estrategia.
type StrategyPerformance struct {
	StrategyName    string
	StrategyVersion string
	ModelVersion    string
	Predictions     int
	Games           int
	Accuracy        float64 // % de predicciones del lado correcto de 50
	AvgFinalCash    float64
	MinFinalCash    float64
	MaxFinalCash    float64
	Trades          int
	WinRate         float64 // % de partidos cerrados con cash > inicial
	ROI             float64 // % sobre el cash inicial medio
}

// CalibrationBin agrupa predicciones por rango de probabilidad.
type CalibrationBin struct {
	Lower         float64
	Upper         float64
	Count         int
	AvgPredicted  float64
	ActualWinRate float64
}
