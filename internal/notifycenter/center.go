// Package notifycenter is the local notification service the reminder app
// talks to: it keeps the permission decision, holds one-shot requests until
// their timers fire and hands delivered notifications to push providers.
package notifycenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/noahxzhu/timer-reminder/internal/model"
	"github.com/noahxzhu/timer-reminder/internal/storage"
)

const (
	// DefaultMaxPending mirrors the platform limit on scheduled local
	// notifications per app.
	DefaultMaxPending = 64
	DefaultDeliveredTTL = 24 * time.Hour
	defaultSendTimeout  = 10 * time.Second
)

var (
	ErrTooManyPending       = errors.New("too many pending notifications")
	ErrInvalidTrigger       = errors.New("trigger interval must be positive")
	ErrRepeatingUnsupported = errors.New("repeating triggers are not supported")
	ErrMissingIdentifier    = errors.New("request identifier is required")
)

type Config struct {
	MaxPending   int
	DeliveredTTL time.Duration
	// BaseURL is prefixed to /notifications/{id} to build the link handed to
	// push providers.
	BaseURL     string
	SendTimeout time.Duration
}

type Center struct {
	store      *storage.Store
	prompter   Prompter
	providers  []Provider
	delivered  *cache.Cache
	cfg        Config
	now        func() time.Time
	updateChan chan struct{}
	onDeliver  func(model.DeliveredNotification)
}

type Option func(*Center)

// WithClock replaces time.Now, used by tests to move past fire dates.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func WithProviders(providers ...Provider) Option {
	return func(c *Center) { c.providers = append(c.providers, providers...) }
}

func NewCenter(store *storage.Store, prompter Prompter, cfg Config, opts ...Option) *Center {
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	if cfg.DeliveredTTL <= 0 {
		cfg.DeliveredTTL = DefaultDeliveredTTL
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Center{
		store:      store,
		prompter:   prompter,
		delivered:  cache.New(cfg.DeliveredTTL, cfg.DeliveredTTL),
		cfg:        cfg,
		now:        time.Now,
		updateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnDeliver sets a callback invoked after a notification is delivered.
func (c *Center) SetOnDeliver(fn func(model.DeliveredNotification)) {
	c.onDeliver = fn
}

// RequestAuthorization prompts once. Later calls return the stored decision
// without prompting again.
func (c *Center) RequestAuthorization(ctx context.Context, opts model.AuthorizationOptions) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	current := c.store.GetAuthorization()
	if current != model.StatusNotDetermined {
		return current.Allows(), nil
	}

	decision, err := c.prompter.Prompt(ctx, opts)
	if err != nil {
		return false, fmt.Errorf("authorization prompt failed: %w", err)
	}
	if decision == model.StatusNotDetermined {
		return false, nil
	}

	if err := c.store.UpdateAuthorization(decision); err != nil {
		return false, fmt.Errorf("failed to save authorization: %w", err)
	}
	slog.Info("Notification authorization decided", "status", decision, "alert", opts.Has(model.OptionAlert), "sound", opts.Has(model.OptionSound), "badge", opts.Has(model.OptionBadge))

	c.Refresh()
	return decision.Allows(), nil
}

func (c *Center) AuthorizationStatus(ctx context.Context) (model.AuthorizationStatus, error) {
	if err := ctx.Err(); err != nil {
		return model.StatusNotDetermined, err
	}
	return c.store.GetAuthorization(), nil
}

// SetAuthorizationStatus is the settings switch: it overrides the decision
// outside of the prompt flow.
func (c *Center) SetAuthorizationStatus(ctx context.Context, status model.AuthorizationStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.UpdateAuthorization(status); err != nil {
		return fmt.Errorf("failed to save authorization: %w", err)
	}
	slog.Info("Notification authorization changed in settings", "status", status)
	c.Refresh()
	return nil
}

func (c *Center) SetCategories(ctx context.Context, categories []model.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.UpdateCategories(categories); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

func (c *Center) Categories(ctx context.Context) ([]model.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store.GetCategories(), nil
}

// Add registers a one-shot request. The trigger starts counting when the
// request is accepted.
func (c *Center) Add(ctx context.Context, req model.PendingNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.ID == "" {
		return ErrMissingIdentifier
	}
	if req.Repeats {
		return ErrRepeatingUnsupported
	}
	if req.FireDelay <= 0 {
		return ErrInvalidTrigger
	}

	now := c.now()
	req.CreatedAt = now
	req.FireAt = now.Add(req.FireDelay.Duration())

	added, err := c.store.AddNotificationLimited(&req, c.cfg.MaxPending)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	if !added {
		return fmt.Errorf("%w: limit is %d", ErrTooManyPending, c.cfg.MaxPending)
	}
	slog.Info("Notification request added", "id", req.ID, "category", req.Content.CategoryID, "in", req.FireDelay.Duration(), "at", req.FireAt.Format("15:04:05"))

	c.Refresh()
	return nil
}

func (c *Center) RemoveAllPending(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.store.RemoveAllNotifications()
	if err != nil {
		return n, fmt.Errorf("failed to clear pending requests: %w", err)
	}
	slog.Info("Removed all pending notification requests", "count", n)
	c.Refresh()
	return n, nil
}

func (c *Center) Pending(ctx context.Context) ([]model.PendingNotification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pending := c.store.GetPending()
	result := make([]model.PendingNotification, 0, len(pending))
	for _, n := range pending {
		result = append(result, *n)
	}
	return result, nil
}

// Delivered looks up a recently delivered notification by request id.
func (c *Center) Delivered(id string) (model.DeliveredNotification, bool) {
	v, ok := c.delivered.Get(id)
	if !ok {
		return model.DeliveredNotification{}, false
	}
	n, ok := v.(model.DeliveredNotification)
	return n, ok
}

// OpenURL is the link to the expanded view of a delivered notification.
func (c *Center) OpenURL(id string) string {
	return c.cfg.BaseURL + "/notifications/" + id
}
