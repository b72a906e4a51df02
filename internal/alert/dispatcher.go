package alert

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const notifyTimeout = 3 * time.Second

// Dispatcher rate limits violation notifications and publishes the ones that
// pass to the hub. Notify returns immediately; the work runs in the background.
type Dispatcher struct {
	limiter *Limiter
	hub     *Hub
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(limiter *Limiter, hub *Hub, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		limiter: limiter,
		hub:     hub,
		logger:  logger.With("component", "alert_dispatcher"),
		now:     time.Now,
	}
}

// Notify drops the alert once the dispatcher is closed.
func (d *Dispatcher) Notify(ctx context.Context, plate, source string) {
	ctx = context.WithoutCancel(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, alert dropped", "plate", plate, "source", source)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		d.dispatch(ctx, plate, source)
	}()
}

func (d *Dispatcher) dispatch(ctx context.Context, plate, source string) {
	allowed, count, err := d.limiter.Allow(ctx, plate)
	if err != nil {
		// Redis trouble should not silence alerts.
		d.logger.Warn("alert limiter unavailable", "error", err, "plate", plate)
		allowed = true
	}
	if !allowed {
		d.logger.Info("daily alert limit reached", "plate", plate, "count", count)
		return
	}

	ev := NewEvent(plate, source, d.now())
	ev.Count = count
	d.hub.Publish(ev)
	d.logger.Info("violation alert published", "plate", plate, "event_id", ev.ID, "subscribers", d.hub.ClientCount())
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting notifications and waits for in-flight ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
