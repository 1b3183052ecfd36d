package mirror

import (
	"context"
	"errors"
)

// Notifier receives attendance writes after they are committed.
type Notifier interface {
	OnCheckIn(ctx context.Context, e AttendanceEvent) error
	OnCheckOut(ctx context.Context, e AttendanceEvent) error
	OnManualEntry(ctx context.Context, e AttendanceEvent) error
	OnTasksLogged(ctx context.Context, e TasksEvent) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) OnCheckIn(context.Context, AttendanceEvent) error     { return nil }
func (Nop) OnCheckOut(context.Context, AttendanceEvent) error    { return nil }
func (Nop) OnManualEntry(context.Context, AttendanceEvent) error { return nil }
func (Nop) OnTasksLogged(context.Context, TasksEvent) error      { return nil }

// Fanout delivers each event to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) OnCheckIn(ctx context.Context, e AttendanceEvent) error {
	return f.each(func(n Notifier) error { return n.OnCheckIn(ctx, e) })
}

func (f Fanout) OnCheckOut(ctx context.Context, e AttendanceEvent) error {
	return f.each(func(n Notifier) error { return n.OnCheckOut(ctx, e) })
}

func (f Fanout) OnManualEntry(ctx context.Context, e AttendanceEvent) error {
	return f.each(func(n Notifier) error { return n.OnManualEntry(ctx, e) })
}

func (f Fanout) OnTasksLogged(ctx context.Context, e TasksEvent) error {
	return f.each(func(n Notifier) error { return n.OnTasksLogged(ctx, e) })
}

func (f Fanout) each(call func(Notifier) error) error {
	var errs []error
	for _, n := range f {
		if err := call(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
