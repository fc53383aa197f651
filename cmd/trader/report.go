package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hgreenfield1/Kalshi/internal/ports"
)

const calibrationBins = 10

// runReport imprime el rendimiento por estrategia y la calibración del modelo.
// purge ("nombre@versión") borra antes los registros de esa versión.
func runReport(ctx context.Context, store ports.PredictionStore, reporter ports.Reporter, purge string) error {
	if purge != "" {
		name, version, ok := strings.Cut(purge, "@")
		if !ok || name == "" || version == "" {
			return fmt.Errorf("runReport: -purge expects <strategy>@<version>, got %q", purge)
		}
		n, err := store.DeleteByStrategy(ctx, name, version)
		if err != nil {
			return err
		}
		slog.Info("predictions deleted", "strategy", name, "version", version, "rows", n)
	}

	perf, err := store.StrategyPerformance(ctx)
	if err != nil {
		return err
	}
	if err := reporter.PrintPerformance(perf); err != nil {
		return err
	}

	bins, err := store.CalibrationBins(ctx, "", calibrationBins)
	if err != nil {
		return err
	}
	return reporter.PrintCalibration(bins)
}
