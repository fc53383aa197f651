package backtest

// prefetch.go: pool acotado que descarga en paralelo el estado del partido
// para todos los timestamps del replay.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// Snapshots is the lookup table built by Prefetch, keyed by unix seconds.
type Snapshots map[int64]domain.GameSnapshot

// Prefetch downloads the game snapshot for every timestamp with at most
// workers concurrent requests (workers <= 0 uses NumCPU, never more than
// len(timestamps)). Each worker computes an independent timestamp→snapshot
// pair; a failed timestamp is logged and left out so the replay treats it
// as missing data. Only context cancellation aborts the whole prefetch.
func Prefetch(ctx context.Context, provider ports.GameProvider, gameID string, timestamps []time.Time, workers int, logger *slog.Logger) (Snapshots, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(timestamps)))

	var (
		mu     sync.Mutex
		out    = make(Snapshots, len(timestamps))
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ts := range timestamps {
		ts := ts
		g.Go(func() error {
			snap, err := provider.GameState(gctx, gameID, ts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Debug("prefetch failed", "game_id", gameID, "at", ts, "err", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			out[ts.Unix()] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backtest.Prefetch: %w", err)
	}

	logger.Info("prefetch complete",
		"game_id", gameID,
		"timestamps", len(timestamps),
		"fetched", len(out),
		"failed", failed,
		"workers", workers,
	)
	return out, nil
}

// GameState implements ports.GameProvider over the prefetched table.
func (s Snapshots) GameState(_ context.Context, gameID string, at time.Time) (domain.GameSnapshot, error) {
	snap, ok := s[at.Unix()]
	if !ok {
		return domain.GameSnapshot{}, fmt.Errorf("no prefetched state for game %s at %s", gameID, at.UTC().Format(time.RFC3339))
	}
	return snap, nil
}
