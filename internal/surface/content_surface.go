package surface

import (
	"context"
	"log/slog"
	"sync"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/storage"
)

// Content is the expanded view of a delivered reminder. It assumes permission
// was granted, since a reminder could not have been delivered otherwise.
type Content struct {
	store     ReminderStore
	scheduler Scheduler
	host      Host

	mu    sync.Mutex
	delay model.Delay
}

func NewContent(store ReminderStore, s Scheduler, host Host) *Content {
	return &Content{
		store:     store,
		scheduler: s,
		host:      host,
		delay:     model.DefaultDelay,
	}
}

// DidReceive positions the picker at the delay the reminder was scheduled
// with.
func (c *Content) DidReceive(n model.DeliveredNotification) model.Delay {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := n.Request.Content.Payload.Delay(); ok {
		c.delay = d
	}
	return c.delay
}

func (c *Content) SetDelay(seconds int) model.Delay {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = model.ClampDelay(seconds)
	return c.delay
}

func (c *Content) Delay() model.Delay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delay
}

// Confirm stages the chosen delay, arms the next reminder and dismisses the
// view. A scheduling failure is logged and returned but the view is
// dismissed regardless.
func (c *Content) Confirm(ctx context.Context) error {
	delay := c.Delay()

	c.store.Set(storage.NextReminderSeconds, delay.Int())

	err := c.scheduler.ScheduleOneShot(ctx, delay)
	if err != nil {
		slog.Error("Failed to schedule next reminder", "seconds", delay.Int(), "error", err)
	}

	c.host.Dismiss()
	return err
}
