// Package surface holds the two places a user picks a reminder delay: the
// main screen and the expanded view of a delivered reminder.
package surface

import (
	"context"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/storage"
)

// Scheduler is the part of scheduler.Scheduler the surfaces drive.
type Scheduler interface {
	AuthorizationStatus() model.AuthorizationStatus
	RequestAuthorization(ctx context.Context) bool
	RefreshAuthorizationStatus(ctx context.Context) model.AuthorizationStatus
	ScheduleOneShot(ctx context.Context, delay model.Delay) error
}

// ReminderStore is the shared suite both surfaces read and write. Unset
// fields read as storage.DefaultSeconds.
type ReminderStore interface {
	Get(field storage.Field) int
	Set(field storage.Field, value int)
}

// Host owns the expanded notification view.
type Host interface {
	Dismiss()
}

type HostFunc func()

func (f HostFunc) Dismiss() { f() }
