// Package notify creates notification rows for repair lifecycle events.
// Delivery is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/logging"
	"github.com/diewo77/go-repairs/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AudienceResolver lists the users holding a permission.
type AudienceResolver interface {
	UsersWith(ctx context.Context, perm gate.Permission) ([]uint, error)
}

// Options configures a Dispatcher.
type Options struct {
	// Async queues events for a background worker instead of writing inline.
	Async     bool
	QueueSize int
	Clock     func() time.Time
}

// Dispatcher writes Notification rows, inline or from a bounded queue.
type Dispatcher struct {
	db       *gorm.DB
	audience AudienceResolver
	log      *zap.Logger
	now      func() time.Time

	async     bool
	queue     chan Event
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher. In async mode call Start before use
// and Close on shutdown.
func NewDispatcher(db *gorm.DB, audience AudienceResolver, log *zap.Logger, opts Options) *Dispatcher {
	d := &Dispatcher{
		db:       db,
		audience: audience,
		log:      logging.OrNop(log).Named("notify"),
		now:      opts.Clock,
		async:    opts.Async,
	}
	if d.now == nil {
		d.now = func() time.Time { return time.Now().UTC() }
	}
	if d.async {
		size := opts.QueueSize
		if size <= 0 {
			size = 256
		}
		d.queue = make(chan Event, size)
	}
	return d
}

// Start launches the queue worker. It is a no-op in sync mode.
func (d *Dispatcher) Start(ctx context.Context) {
	if !d.async {
		return
	}
	d.wg.Add(1)
	go d.run(ctx)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for ev := range d.queue {
		// Deliveries outlive request contexts; only the worker context's values are kept.
		if err := d.deliver(context.WithoutCancel(ctx), ev); err != nil {
			d.log.Error("notification delivery failed", zap.String("type", string(ev.Type)), zap.Error(err))
		}
	}
}

// Dispatch delivers events. It never fails: errors are logged, and in async
// mode a full queue drops the event with a warning.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) {
	if d == nil {
		return
	}
	for _, ev := range events {
		if !d.async {
			if err := d.deliver(ctx, ev); err != nil {
				d.log.Error("notification delivery failed", zap.String("type", string(ev.Type)), zap.Error(err))
			}
			continue
		}
		d.enqueue(ev)
	}
}

func (d *Dispatcher) enqueue(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, dropping notification", zap.String("type", string(ev.Type)))
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notification queue full, dropping", zap.String("type", string(ev.Type)))
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	if d == nil || !d.async {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) recipients(ctx context.Context, ev Event) ([]uint, error) {
	if len(ev.Recipients) > 0 {
		return ev.Recipients, nil
	}
	if ev.Audience == "" {
		return nil, errors.New("event has neither recipients nor audience")
	}
	if d.audience == nil {
		return nil, errors.New("no audience resolver configured")
	}
	return d.audience.UsersWith(ctx, ev.Audience)
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) error {
	ids, err := d.recipients(ctx, ev)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		d.log.Debug("notification has no recipients", zap.String("type", string(ev.Type)))
		return nil
	}
	rows := make([]models.Notification, 0, len(ids))
	now := d.now()
	for _, id := range ids {
		if id == 0 {
			continue
		}
		rows = append(rows, models.Notification{
			CreatedAt:   now,
			RecipientID: id,
			RepairID:    ev.RepairID,
			Type:        ev.Type,
			Title:       ev.Title,
			Message:     ev.Message,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Create(&rows).Error
}
