package notifycenter

import (
	"context"
	"log/slog"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// Provider presents a delivered notification to the user. openURL points at
// the expanded view for the notification.
type Provider interface {
	Name() string
	Send(ctx context.Context, n model.DeliveredNotification, openURL string) error
}

// LogProvider writes deliveries to the structured log. It is always enabled so
// that a server without push credentials still shows reminders somewhere.
type LogProvider struct{}

func (LogProvider) Name() string { return "log" }

func (LogProvider) Send(_ context.Context, n model.DeliveredNotification, openURL string) error {
	slog.Info("Reminder delivered",
		"id", n.Request.ID,
		"title", n.Request.Content.Title,
		"scheduled_seconds", n.Request.Content.Payload.ScheduledSeconds,
		"open", openURL,
	)
	return nil
}
