package reconciler

import (
	"context"
	"time"

	"github.com/folkstudio/printflow/internal/printshop/repository"
	"go.uber.org/zap"
)

// Reconciler periodically pushes locally-stranded orders back to the remote
// store. It is the only component that drains the pending-sync set.
type Reconciler struct {
	orders   *repository.OrderGateway
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

func New(orders *repository.OrderGateway, interval time.Duration, logger *zap.Logger) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		orders:   orders,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sync loop until Stop is called.
func (r *Reconciler) Start() {
	go r.run()
}

func (r *Reconciler) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.interval)
			if err := r.SyncOnce(ctx); err != nil {
				r.logger.Warn("reconcile pass failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Stop halts the loop and waits for the in-flight pass to finish.
func (r *Reconciler) Stop() {
	close(r.stop)
	<-r.done
}

// SyncOnce pushes every pending order once. Per-order failures are logged and
// skipped so one unreachable record does not block the rest of the queue.
func (r *Reconciler) SyncOnce(ctx context.Context) error {
	ids, err := r.orders.PendingSync(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var synced int
	for _, id := range ids {
		if err := r.orders.SyncOrder(ctx, id); err != nil {
			r.logger.Warn("sync order failed", zap.String("order_id", id), zap.Error(err))
			continue
		}
		synced++
	}
	r.logger.Info("reconcile pass done", zap.Int("pending", len(ids)), zap.Int("synced", synced))
	return nil
}
