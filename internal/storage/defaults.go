package storage

import (
	"log/slog"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// Field names a key of the shared reminder record.
type Field string

const (
	LastScheduledSeconds Field = "lastScheduledSeconds"
	NextReminderSeconds  Field = "nextReminderSeconds"
)

// DefaultSeconds is what Get returns for a field that was never written or
// when the suite is unreachable.
const DefaultSeconds = int(model.DefaultDelay)

const DefaultSuite = "group.timer-reminder"

// Defaults is an app-group scoped view over the Store, shared by the main
// surface and the content surface. Writes are fire-and-forget.
type Defaults struct {
	store *Store
	suite string
}

// OpenDefaults returns a view for suite. A nil store or an empty suite yields
// an unreachable view: reads return DefaultSeconds and writes are dropped.
func OpenDefaults(store *Store, suite string) *Defaults {
	if store == nil || suite == "" {
		slog.Warn("Shared defaults unavailable, falling back to defaults", "suite", suite)
		return &Defaults{suite: suite}
	}
	return &Defaults{store: store, suite: suite}
}

func (d *Defaults) Available() bool { return d.store != nil }

func (d *Defaults) Get(field Field) int {
	if d.store == nil {
		return DefaultSeconds
	}
	v, ok := d.store.Integer(d.suite, string(field))
	if !ok {
		return DefaultSeconds
	}
	return v
}

func (d *Defaults) Set(field Field, value int) {
	if d.store == nil {
		return
	}
	if err := d.store.SetInteger(d.suite, string(field), value); err != nil {
		slog.Warn("Failed to persist shared default", "suite", d.suite, "field", field, "error", err)
	}
}

func (d *Defaults) Record() model.ReminderRecord {
	return model.ReminderRecord{
		LastScheduledSeconds: d.Get(LastScheduledSeconds),
		NextReminderSeconds:  d.Get(NextReminderSeconds),
	}
}
