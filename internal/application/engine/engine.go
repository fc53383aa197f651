// Package engine holds what backtest and live trading share: the services
// bundle passed to every component and the per-market trading session.
package engine

import (
	"log/slog"

	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// Services is the explicit context object built once in main and handed to
// every component that needs exchange access, game data or telemetry.
type Services struct {
	Exchange ports.Exchange
	Games    ports.GameProvider
	Locator  ports.GameLocator
	Table    ports.WinProbabilityTable
	Store    ports.PredictionStore // nil disables persistence
	Logger   *slog.Logger
	Metrics  ports.Metrics
}

// WithDefaults fills the optional telemetry fields.
func (s Services) WithDefaults() Services {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Metrics == nil {
		s.Metrics = ports.NopMetrics{}
	}
	return s
}
