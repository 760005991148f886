package worker

import (
	"context"
	"sync"
	"time"

	"coinvest-go/pkg/logger"
)

type OrderExpirer interface {
	ExpireOrders(ctx context.Context) (int, error)
}

// DeadlineSweeper periodically rejects open orders whose voting deadline
// has passed.
type DeadlineSweeper struct {
	orders   OrderExpirer
	log      logger.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDeadlineSweeper(orders OrderExpirer, log logger.Logger, interval time.Duration) *DeadlineSweeper {
	return &DeadlineSweeper{
		orders:   orders,
		log:      log,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

func (w *DeadlineSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("worker: deadline sweeper started", "interval", w.interval)
}

// Stop signals the worker to stop and waits for an in-flight sweep.
func (w *DeadlineSweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("worker: deadline sweeper stopped")
	})
}

func (w *DeadlineSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *DeadlineSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	count, err := w.orders.ExpireOrders(ctx)
	if err != nil {
		w.log.InternalError("worker: expire orders failed", err, "closed", count)
		return
	}
	if count > 0 {
		w.log.Info("worker: expired orders rejected", "count", count)
	}
}
