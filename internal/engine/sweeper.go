package engine

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs the expiry sweep at the given interval until the
// context is cancelled. Wakeup forces an immediate pass. The sweep may
// run concurrently with normal transitions; each record is written
// under the same version-conditioned discipline, so a lost race simply
// skips that record.
func (pe *ProxyEngine) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Starting expiry sweeper", "interval", interval.String(), "batch_size", pe.sweepBatchSize)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Expiry sweeper stopping due to context cancel")
			return
		case <-ticker.C:
			pe.runSweep(ctx)
		case <-pe.wakeup:
			pe.runSweep(ctx)
		}
	}
}

func (pe *ProxyEngine) runSweep(ctx context.Context) {
	count, err := pe.SweepExpired(ctx)
	if err != nil {
		slog.Error("Expiry sweep finished with errors", "expired", count, "error", err)
		return
	}
	if count > 0 {
		slog.Info("Expired stale proxy actions", "count", count)
	}
}
