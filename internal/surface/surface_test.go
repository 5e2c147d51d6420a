package surface

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/notifycenter"
	"github.com/noahxzhu/timer-reminder/internal/scheduler"
	"github.com/noahxzhu/timer-reminder/internal/storage"
)

type fakeScheduler struct {
	mu        sync.Mutex
	status    model.AuthorizationStatus
	grant     bool
	scheduled []model.Delay
	err       error
	requests  int
	refreshes int
	// block, when set, holds ScheduleOneShot until closed.
	block chan struct{}
}

func (f *fakeScheduler) AuthorizationStatus() model.AuthorizationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeScheduler) RequestAuthorization(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.grant {
		f.status = model.StatusAuthorized
	} else {
		f.status = model.StatusDenied
	}
	return f.grant
}

func (f *fakeScheduler) RefreshAuthorizationStatus(context.Context) model.AuthorizationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.status
}

func (f *fakeScheduler) ScheduleOneShot(_ context.Context, d model.Delay) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, d)
	return f.err
}

func (f *fakeScheduler) Scheduled() []model.Delay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Delay(nil), f.scheduled...)
}

type memoryStore map[storage.Field]int

func (m memoryStore) Get(field storage.Field) int {
	if v, ok := m[field]; ok {
		return v
	}
	return storage.DefaultSeconds
}

func (m memoryStore) Set(field storage.Field, value int) { m[field] = value }

// stack is the real scheduler over a real notification center with a
// controllable clock.
type stack struct {
	center    *notifycenter.Center
	scheduler *scheduler.Scheduler
	defaults  *storage.Defaults
	now       time.Time
	mu        sync.Mutex
}

func newStack(t *testing.T, decision model.AuthorizationStatus) *stack {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, store.Load())

	s := &stack{now: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)}
	s.center = notifycenter.NewCenter(store, notifycenter.PolicyPrompter{Decision: decision},
		notifycenter.Config{BaseURL: "http://reminder.test"},
		notifycenter.WithClock(s.clock))
	s.defaults = storage.OpenDefaults(store, storage.DefaultSuite)
	s.scheduler = scheduler.New(s.center, s.defaults)
	return s
}

func (s *stack) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// fire advances the clock past every pending reminder and returns the ones
// delivered.
func (s *stack) fire(t *testing.T, d time.Duration) []model.DeliveredNotification {
	t.Helper()
	pending, err := s.center.Pending(context.Background())
	require.NoError(t, err)

	var delivered []model.DeliveredNotification
	s.center.SetOnDeliver(func(n model.DeliveredNotification) { delivered = append(delivered, n) })
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()

	// Start would do the same on its timer.
	deliverDue(s.center)
	require.LessOrEqual(t, len(delivered), len(pending))
	return delivered
}

// deliverDue runs the center's loop for a single pass.
func deliverDue(c *notifycenter.Center) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()
	cancel()
	<-done
}

func TestMainSetDelayClamps(t *testing.T) {
	t.Parallel()

	m := NewMain(&fakeScheduler{status: model.StatusAuthorized}, time.Second)
	assert.Equal(t, model.DefaultDelay, m.Delay())
	assert.Equal(t, model.MinDelay, m.SetDelay(9))
	assert.Equal(t, model.MaxDelay, m.SetDelay(301))
	assert.Equal(t, model.Delay(75), m.SetDelay(75))
}

func TestMainNeverSchedulesOutOfRange(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusAuthorized}
	m := NewMain(fs, time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	for _, v := range []int{-1, 0, 9, 301, 5000} {
		m.SetDelay(v)
		assert.Equal(t, OutcomeScheduled, m.Confirm(ctx))
	}
	for _, d := range fs.Scheduled() {
		assert.NoError(t, d.Validate())
	}
	assert.Equal(t, []model.Delay{10, 10, 10, 300, 300}, fs.Scheduled())
}

func TestContentNeverSchedulesOutOfRange(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusAuthorized}
	c := NewContent(memoryStore{}, fs, HostFunc(func() {}))

	c.DidReceive(model.DeliveredNotification{Request: model.PendingNotification{
		Content: model.Content{Payload: model.Payload{ScheduledSeconds: 9000}},
	}})
	require.NoError(t, c.Confirm(context.Background()))

	c.SetDelay(9)
	require.NoError(t, c.Confirm(context.Background()))

	assert.Equal(t, []model.Delay{300, 10}, fs.Scheduled())
}

// Fresh install: the first confirm asks for permission, then schedules.
func TestScenarioFirstConfirmRequestsPermission(t *testing.T) {
	t.Parallel()

	s := newStack(t, model.StatusAuthorized)
	m := NewMain(s.scheduler, time.Second)
	defer m.Close()
	ctx := context.Background()

	m.Launch(ctx)
	assert.Equal(t, model.StatusNotDetermined, m.View().Status)

	m.SetDelay(60)
	assert.Equal(t, OutcomeScheduled, m.Confirm(ctx))
	assert.Equal(t, model.StatusAuthorized, s.scheduler.AuthorizationStatus())
	assert.Equal(t, 60, s.defaults.Get(storage.LastScheduledSeconds))

	pending, err := s.center.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.Delay(60), pending[0].FireDelay)
}

func TestMainNotGrantedAbortsSilently(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusNotDetermined, grant: false}
	m := NewMain(fs, time.Second)

	assert.Equal(t, OutcomeNotGranted, m.Confirm(context.Background()))
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Empty(t, fs.Scheduled())
	assert.Equal(t, 1, fs.requests)
}

// Denied: the confirm action is disabled and nothing is scheduled.
func TestScenarioDeniedDisablesConfirm(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusDenied}
	m := NewMain(fs, time.Second)

	assert.False(t, m.CanConfirm())
	assert.False(t, m.View().CanConfirm)
	assert.Equal(t, OutcomeDisabled, m.Confirm(context.Background()))
	assert.Empty(t, fs.Scheduled())
	assert.Zero(t, fs.requests)
}

func TestMainForegroundRefreshesStatus(t *testing.T) {
	t.Parallel()

	s := newStack(t, model.StatusAuthorized)
	m := NewMain(s.scheduler, time.Second)
	ctx := context.Background()

	require.NoError(t, s.center.SetAuthorizationStatus(ctx, model.StatusDenied))
	assert.True(t, m.CanConfirm(), "status is only re-read on lifecycle events")

	m.Foreground(ctx)
	assert.False(t, m.CanConfirm())
	assert.Equal(t, OutcomeDisabled, m.Confirm(ctx))
}

func TestMainFeedbackRevertsToIdle(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusAuthorized}
	m := NewMain(fs, 50*time.Millisecond)
	defer m.Close()

	assert.Equal(t, OutcomeScheduled, m.Confirm(context.Background()))
	assert.Equal(t, PhaseScheduled, m.Phase())
	assert.Eventually(t, func() bool { return m.Phase() == PhaseIdle }, 2*time.Second, 10*time.Millisecond)
}

func TestMainFailureRevertsToIdle(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusAuthorized, err: &scheduler.SchedulingError{Delay: 60, Err: errors.New("rejected")}}
	m := NewMain(fs, time.Second)

	assert.Equal(t, OutcomeFailed, m.Confirm(context.Background()))
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestMainConfirmWhileSchedulingIsIgnored(t *testing.T) {
	t.Parallel()

	fs := &fakeScheduler{status: model.StatusAuthorized, block: make(chan struct{})}
	m := NewMain(fs, time.Second)
	defer m.Close()

	result := make(chan Outcome, 1)
	go func() { result <- m.Confirm(context.Background()) }()

	require.Eventually(t, func() bool { return m.Phase() == PhaseScheduling }, 2*time.Second, time.Millisecond)
	assert.False(t, m.CanConfirm())
	assert.Equal(t, OutcomeBusy, m.Confirm(context.Background()))

	close(fs.block)
	assert.Equal(t, OutcomeScheduled, <-result)
	assert.Len(t, fs.Scheduled(), 1)
}

// A reminder scheduled at 45s opens its expanded view at 45s.
func TestPayloadRoundTripPrefillsContent(t *testing.T) {
	t.Parallel()

	s := newStack(t, model.StatusAuthorized)
	ctx := context.Background()
	require.True(t, s.scheduler.RequestAuthorization(ctx))
	require.NoError(t, s.scheduler.ScheduleOneShot(ctx, 45))

	delivered := s.fire(t, 45*time.Second)
	require.Len(t, delivered, 1)

	c := NewContent(s.defaults, s.scheduler, HostFunc(func() {}))
	assert.Equal(t, model.Delay(45), c.DidReceive(delivered[0]))
	assert.Equal(t, model.Delay(45), c.Delay())
}

func TestContentFallsBackToDefault(t *testing.T) {
	t.Parallel()

	c := NewContent(memoryStore{}, &fakeScheduler{}, HostFunc(func() {}))
	assert.Equal(t, model.DefaultDelay, c.DidReceive(model.DeliveredNotification{}))
}

// Delivered at 120s, confirmed at 90s: next reminder staged and armed.
func TestScenarioContentReschedules(t *testing.T) {
	t.Parallel()

	s := newStack(t, model.StatusAuthorized)
	ctx := context.Background()
	require.True(t, s.scheduler.RequestAuthorization(ctx))
	require.NoError(t, s.scheduler.ScheduleOneShot(ctx, 120))

	delivered := s.fire(t, 2*time.Minute)
	require.Len(t, delivered, 1)

	dismissed := 0
	c := NewContent(s.defaults, s.scheduler, HostFunc(func() { dismissed++ }))
	assert.Equal(t, model.Delay(120), c.DidReceive(delivered[0]))

	c.SetDelay(90)
	require.NoError(t, c.Confirm(ctx))

	assert.Equal(t, 1, dismissed)
	assert.Equal(t, 90, s.defaults.Get(storage.NextReminderSeconds))
	assert.Equal(t, 90, s.defaults.Get(storage.LastScheduledSeconds))

	pending, err := s.center.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.Delay(90), pending[0].FireDelay)
	assert.Equal(t, 90, pending[0].Content.Payload.ScheduledSeconds)
	assert.NotEqual(t, delivered[0].Request.ID, pending[0].ID)
}

func TestContentDismissesOnFailure(t *testing.T) {
	t.Parallel()

	store := memoryStore{}
	fs := &fakeScheduler{err: errors.New("rejected")}
	dismissed := false
	c := NewContent(store, fs, HostFunc(func() { dismissed = true }))
	c.SetDelay(30)

	require.Error(t, c.Confirm(context.Background()))
	assert.True(t, dismissed)
	assert.Equal(t, 30, store.Get(storage.NextReminderSeconds))
}

// cancelAll leaves nothing pending however many reminders were stacked.
func TestScenarioCancelAll(t *testing.T) {
	t.Parallel()

	s := newStack(t, model.StatusAuthorized)
	m := NewMain(s.scheduler, time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	for _, v := range []int{30, 60, 60, 200} {
		m.SetDelay(v)
		require.Equal(t, OutcomeScheduled, m.Confirm(ctx))
	}
	pending, err := s.center.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	require.NoError(t, s.scheduler.CancelAll(ctx))
	pending, err = s.center.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, s.fire(t, time.Hour))
}
