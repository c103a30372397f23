package worker

import (
	"context"
	"time"

	"github.com/workstream/comms-api/internal/repository"
	"github.com/workstream/comms-api/pkg/logger"
)

// OutboxCleanupWorker prunes processed outbox rows past the retention
// window so the table stays small.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &OutboxCleanupWorker{repo: repo, retention: retention, interval: interval, logger: logger}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.retention)
			deleted, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
			if err != nil {
				w.logger.Error(err, "failed to prune outbox")
				continue
			}
			if deleted > 0 {
				w.logger.Info("pruned outbox", "deleted", deleted)
			}
		}
	}
}
