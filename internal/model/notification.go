package model

import "time"

const (
	CategoryTimerReminder = "TIMER_REMINDER"
	ActionConfirm         = "CONFIRM_ACTION"

	ReminderTitle = "Timer Reminder"
	ReminderBody  = "Time's up! Expand this notification to choose when to be reminded next."
	ConfirmTitle  = "Confirm"

	SoundDefault = "default"
)

// Payload is the typed user info attached to every reminder.
type Payload struct {
	ScheduledSeconds int `json:"scheduledSeconds,omitempty"`
}

// Delay returns the delay carried by the payload. ok is false when the field
// is absent.
func (p Payload) Delay() (d Delay, ok bool) {
	if p.ScheduledSeconds == 0 {
		return 0, false
	}
	return ClampDelay(p.ScheduledSeconds), true
}

type Content struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Sound      string  `json:"sound,omitempty"`
	CategoryID string  `json:"category_id"`
	Payload    Payload `json:"payload"`
}

// PendingNotification is a one-shot request registered with the notification
// center.
type PendingNotification struct {
	ID        string    `json:"id"`
	Content   Content   `json:"content"`
	FireDelay Delay     `json:"fire_delay"`
	Repeats   bool      `json:"repeats"`
	CreatedAt time.Time `json:"created_at"`
	FireAt    time.Time `json:"fire_at"`
}

type DeliveredNotification struct {
	Request     PendingNotification `json:"request"`
	DeliveredAt time.Time           `json:"delivered_at"`
}

type Action struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Foreground bool   `json:"foreground"`
}

type Category struct {
	ID      string   `json:"id"`
	Actions []Action `json:"actions"`
}

// ReminderRecord is the state shared by both surfaces.
type ReminderRecord struct {
	LastScheduledSeconds int `json:"lastScheduledSeconds"`
	NextReminderSeconds  int `json:"nextReminderSeconds"`
}

type Defaults map[string]int

type AppSchema struct {
	Authorization AuthorizationStatus    `json:"authorization"`
	Categories    []Category             `json:"categories"`
	Suites        map[string]Defaults    `json:"suites"`
	Notifications []*PendingNotification `json:"notifications"`
}
