// Package scheduler arms one-shot reminders with the notification center and
// tracks the app's authorization status.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/storage"
)

// NotificationCenter is the host notification service.
type NotificationCenter interface {
	RequestAuthorization(ctx context.Context, opts model.AuthorizationOptions) (bool, error)
	AuthorizationStatus(ctx context.Context) (model.AuthorizationStatus, error)
	SetCategories(ctx context.Context, categories []model.Category) error
	Add(ctx context.Context, req model.PendingNotification) error
	RemoveAllPending(ctx context.Context) (int, error)
	Pending(ctx context.Context) ([]model.PendingNotification, error)
}

// Store is the shared defaults suite.
type Store interface {
	Get(field storage.Field) int
	Set(field storage.Field, value int)
}

// SchedulingError reports that the notification center refused a request.
type SchedulingError struct {
	Delay model.Delay
	Err   error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule %ds reminder: %v", e.Delay, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }

const authorizationOptions = model.OptionAlert | model.OptionSound | model.OptionBadge

type Scheduler struct {
	center NotificationCenter
	store  Store
	newID  func() string

	mu     sync.RWMutex
	status model.AuthorizationStatus
}

func New(center NotificationCenter, store Store) *Scheduler {
	return &Scheduler{
		center: center,
		store:  store,
		newID:  func() string { return uuid.New().String() },
		status: model.StatusNotDetermined,
	}
}

// TimerReminderCategory declares the reminder category with its single
// confirm action, which opens the expanded view.
func TimerReminderCategory() model.Category {
	return model.Category{
		ID: model.CategoryTimerReminder,
		Actions: []model.Action{
			{ID: model.ActionConfirm, Title: model.ConfirmTitle, Foreground: true},
		},
	}
}

func (s *Scheduler) RegisterCategories(ctx context.Context) error {
	return s.center.SetCategories(ctx, []model.Category{TimerReminderCategory()})
}

// AuthorizationStatus returns the last status read from the center.
func (s *Scheduler) AuthorizationStatus() model.AuthorizationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RequestAuthorization asks for alert, sound and badge permission. A failed
// prompt counts as not granted; denial only shows up in the status.
func (s *Scheduler) RequestAuthorization(ctx context.Context) bool {
	granted, err := s.center.RequestAuthorization(ctx, authorizationOptions)
	if err != nil {
		slog.Warn("Authorization request failed", "error", err)
		granted = false
	}
	s.RefreshAuthorizationStatus(ctx)
	return granted
}

// RefreshAuthorizationStatus re-reads the decision, which may have changed in
// settings while the app was in the background.
func (s *Scheduler) RefreshAuthorizationStatus(ctx context.Context) model.AuthorizationStatus {
	status, err := s.center.AuthorizationStatus(ctx)
	if err != nil {
		slog.Warn("Failed to read authorization status", "error", err)
		return s.AuthorizationStatus()
	}
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return status
}

// ScheduleOneShot arms a single reminder that fires after delay. Earlier
// pending reminders are left untouched, so repeated calls stack.
func (s *Scheduler) ScheduleOneShot(ctx context.Context, delay model.Delay) error {
	if err := delay.Validate(); err != nil {
		return err
	}

	req := model.PendingNotification{
		ID: s.newID(),
		Content: model.Content{
			Title:      model.ReminderTitle,
			Body:       model.ReminderBody,
			Sound:      model.SoundDefault,
			CategoryID: model.CategoryTimerReminder,
			Payload:    model.Payload{ScheduledSeconds: delay.Int()},
		},
		FireDelay: delay,
		Repeats:   false,
	}

	if err := s.center.Add(ctx, req); err != nil {
		return &SchedulingError{Delay: delay, Err: err}
	}

	s.store.Set(storage.LastScheduledSeconds, delay.Int())
	slog.Info("Reminder scheduled", "id", req.ID, "seconds", delay.Int())
	return nil
}

func (s *Scheduler) CancelAll(ctx context.Context) error {
	if _, err := s.center.RemoveAllPending(ctx); err != nil {
		return fmt.Errorf("cancel pending reminders: %w", err)
	}
	return nil
}

func (s *Scheduler) Pending(ctx context.Context) ([]model.PendingNotification, error) {
	return s.center.Pending(ctx)
}
