package surface

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

const DefaultFeedback = 2 * time.Second

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScheduling
	PhaseScheduled
)

func (p Phase) String() string {
	switch p {
	case PhaseScheduling:
		return "scheduling"
	case PhaseScheduled:
		return "scheduled"
	default:
		return "idle"
	}
}

// Outcome is what a confirm press ended in. None of them is shown to the user
// as an error.
type Outcome int

const (
	OutcomeScheduled Outcome = iota
	OutcomeBusy
	OutcomeDisabled
	OutcomeNotGranted
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeBusy:
		return "busy"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeNotGranted:
		return "not_granted"
	default:
		return "failed"
	}
}

type MainView struct {
	Delay      model.Delay
	Phase      Phase
	Status     model.AuthorizationStatus
	CanConfirm bool
}

type Main struct {
	scheduler Scheduler
	feedback  time.Duration

	mu     sync.Mutex
	delay  model.Delay
	phase  Phase
	revert *time.Timer
}

func NewMain(s Scheduler, feedback time.Duration) *Main {
	if feedback <= 0 {
		feedback = DefaultFeedback
	}
	return &Main{
		scheduler: s,
		feedback:  feedback,
		delay:     model.DefaultDelay,
		phase:     PhaseIdle,
	}
}

// Launch and Foreground keep the status in line with changes made in
// settings while the app was away.
func (m *Main) Launch(ctx context.Context) { m.scheduler.RefreshAuthorizationStatus(ctx) }

func (m *Main) Foreground(ctx context.Context) { m.scheduler.RefreshAuthorizationStatus(ctx) }

// SetDelay moves the slider. The value is clamped and kept locally only.
func (m *Main) SetDelay(seconds int) model.Delay {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = model.ClampDelay(seconds)
	return m.delay
}

func (m *Main) Delay() model.Delay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delay
}

func (m *Main) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Main) CanConfirm() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canConfirmLocked()
}

func (m *Main) canConfirmLocked() bool {
	return m.phase != PhaseScheduling && m.scheduler.AuthorizationStatus() != model.StatusDenied
}

func (m *Main) View() MainView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MainView{
		Delay:      m.delay,
		Phase:      m.phase,
		Status:     m.scheduler.AuthorizationStatus(),
		CanConfirm: m.canConfirmLocked(),
	}
}

// RequestAuthorization is the standalone permission button.
func (m *Main) RequestAuthorization(ctx context.Context) bool {
	return m.scheduler.RequestAuthorization(ctx)
}

// Confirm schedules a reminder at the current delay, asking for permission
// first when it was never decided.
func (m *Main) Confirm(ctx context.Context) Outcome {
	m.mu.Lock()
	if m.phase == PhaseScheduling {
		m.mu.Unlock()
		return OutcomeBusy
	}
	if m.scheduler.AuthorizationStatus() == model.StatusDenied {
		m.mu.Unlock()
		return OutcomeDisabled
	}
	delay := m.delay
	m.phase = PhaseScheduling
	if m.revert != nil {
		m.revert.Stop()
		m.revert = nil
	}
	m.mu.Unlock()

	if m.scheduler.AuthorizationStatus() == model.StatusNotDetermined {
		if !m.scheduler.RequestAuthorization(ctx) {
			m.setPhase(PhaseIdle)
			return OutcomeNotGranted
		}
	}

	if err := m.scheduler.ScheduleOneShot(ctx, delay); err != nil {
		slog.Warn("Scheduling reminder failed", "seconds", delay.Int(), "error", err)
		m.setPhase(PhaseIdle)
		return OutcomeFailed
	}

	m.mu.Lock()
	m.phase = PhaseScheduled
	m.revert = time.AfterFunc(m.feedback, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.phase == PhaseScheduled {
			m.phase = PhaseIdle
		}
	})
	m.mu.Unlock()
	return OutcomeScheduled
}

func (m *Main) setPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	m.mu.Unlock()
}

// Close stops a pending feedback timer.
func (m *Main) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revert != nil {
		m.revert.Stop()
		m.revert = nil
	}
}
