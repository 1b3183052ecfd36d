package mirror

import (
	"context"
	"sync"
	"time"

	"attendance-bot/internal/logging"

	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 10 * time.Second

// Dispatcher runs every notification in its own goroutine so callers never
// wait on external systems. Failures are logged and dropped, never retried.
type Dispatcher struct {
	next    Notifier
	timeout time.Duration
	logger  *logrus.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(next Notifier, timeout time.Duration) *Dispatcher {
	if next == nil {
		next = Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		next:    next,
		timeout: timeout,
		logger:  logging.New(),
	}
}

func (d *Dispatcher) OnCheckIn(ctx context.Context, e AttendanceEvent) error {
	d.dispatch(ctx, e.Type, e.UserID, func(ctx context.Context) error { return d.next.OnCheckIn(ctx, e) })
	return nil
}

func (d *Dispatcher) OnCheckOut(ctx context.Context, e AttendanceEvent) error {
	d.dispatch(ctx, e.Type, e.UserID, func(ctx context.Context) error { return d.next.OnCheckOut(ctx, e) })
	return nil
}

func (d *Dispatcher) OnManualEntry(ctx context.Context, e AttendanceEvent) error {
	d.dispatch(ctx, e.Type, e.UserID, func(ctx context.Context) error { return d.next.OnManualEntry(ctx, e) })
	return nil
}

func (d *Dispatcher) OnTasksLogged(ctx context.Context, e TasksEvent) error {
	d.dispatch(ctx, e.Type, e.UserID, func(ctx context.Context) error { return d.next.OnTasksLogged(ctx, e) })
	return nil
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(parent context.Context, event EventType, userID string, fn func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.WithFields(logrus.Fields{
					"event":   event,
					"user_id": userID,
					"panic":   r,
				}).Error("Mirror notifier panicked")
			}
		}()

		// Detached from the request so a finished chat update does not cancel the sync.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"event":   event,
				"user_id": userID,
			}).Warn("Mirror sync failed")
			return
		}

		d.logger.WithFields(logrus.Fields{
			"event":   event,
			"user_id": userID,
		}).Debug("Mirror sync delivered")
	}()
}
