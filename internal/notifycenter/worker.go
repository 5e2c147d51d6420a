package notifycenter

import (
	"context"
	"log/slog"
	"time"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// Refresh signals the worker to re-evaluate the schedule immediately
func (c *Center) Refresh() {
	select {
	case c.updateChan <- struct{}{}:
	default:
		// Channel already has a pending signal, no need to block
	}
}

// Start runs the timer loop until ctx is cancelled.
func (c *Center) Start(ctx context.Context) {
	slog.Info("Notification center started")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		nextRun := c.checkAndProcess(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}

		if nextRun.IsZero() {
			slog.Debug("No pending notifications. Center idle.")
		} else {
			duration := nextRun.Sub(c.now())
			if duration < 0 {
				duration = 0
			}
			timer.Reset(duration)
			slog.Debug("Next fire scheduled", "in", duration, "at", nextRun.Format("15:04:05"))
		}

		select {
		case <-ctx.Done():
			slog.Info("Notification center stopped")
			return
		case <-c.updateChan:
		case <-timer.C:
		}
	}
}

// checkAndProcess fires due requests and returns the fire date of the next
// one, or the zero time when nothing is pending.
func (c *Center) checkAndProcess(ctx context.Context) time.Time {
	now := c.now()
	var earliestNext time.Time

	for _, n := range c.store.GetPending() {
		if now.Before(n.FireAt) {
			if earliestNext.IsZero() || n.FireAt.Before(earliestNext) {
				earliestNext = n.FireAt
			}
			continue
		}

		removed, err := c.store.RemoveNotification(n.ID)
		if err != nil {
			slog.Error("Failed to save store", "error", err)
		}
		if !removed {
			continue
		}

		status := c.store.GetAuthorization()
		if !status.Allows() {
			slog.Info("Dropping notification, not authorized", "id", n.ID, "status", status)
			continue
		}

		c.deliver(ctx, model.DeliveredNotification{Request: *n, DeliveredAt: now})
	}

	return earliestNext
}

func (c *Center) deliver(ctx context.Context, n model.DeliveredNotification) {
	c.delivered.SetDefault(n.Request.ID, n)
	openURL := c.OpenURL(n.Request.ID)

	for _, p := range c.providers {
		sendCtx, cancel := context.WithTimeout(ctx, c.cfg.SendTimeout)
		if err := p.Send(sendCtx, n, openURL); err != nil {
			slog.Error("Failed to deliver notification", "provider", p.Name(), "id", n.Request.ID, "error", err)
		}
		cancel()
	}

	if c.onDeliver != nil {
		c.onDeliver(n)
	}
}
