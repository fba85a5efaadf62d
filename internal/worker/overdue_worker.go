package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/service"
)

// StartOverdueWorker periodically runs the overdue sweep so expired tickets
// flip even without read traffic. The sweep itself is idempotent; running it
// here and inline with list reads cannot double-fire.
func StartOverdueWorker(ctx context.Context, tickets *service.TicketService, interval time.Duration, logger *zap.Logger) {
	if tickets == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				flipped, err := tickets.SweepOverdue(ctx)
				if err != nil {
					logger.Error("overdue sweep failed", zap.Error(err))
					continue
				}
				if flipped > 0 {
					logger.Info("overdue sweep", zap.Int("flipped", flipped))
				}
			}
		}
	}()
}
