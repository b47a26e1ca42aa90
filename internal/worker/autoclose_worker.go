package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/elvificent/supportdesk/internal/service"
)

// AutoCloseWorker periodically closes tickets idle beyond the configured
// threshold.
type AutoCloseWorker struct {
	tickets  *service.TicketService
	logger   *zap.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewAutoCloseWorker builds the worker.
func NewAutoCloseWorker(tickets *service.TicketService, logger *zap.Logger, interval time.Duration) *AutoCloseWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AutoCloseWorker{
		tickets:  tickets,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately so a restart does
// not delay closure by a full interval.
func (w *AutoCloseWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		w.sweep(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.sweep(ctx)
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight sweep to finish.
func (w *AutoCloseWorker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *AutoCloseWorker) sweep(ctx context.Context) {
	closed, err := w.tickets.AutoCloseStale(ctx)
	if err != nil {
		w.logger.Error("stale ticket sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		w.logger.Info("stale tickets closed", zap.Int("count", closed))
	}
}
