package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kezhenxu94/after-hours/pkg/config"
	"github.com/kezhenxu94/after-hours/pkg/mailbox"
	"github.com/kezhenxu94/after-hours/pkg/metrics"
	"github.com/kezhenxu94/after-hours/pkg/schedule"
	"github.com/kezhenxu94/after-hours/pkg/settings"
)

// Notification keys shared with the add-in.
const (
	KeyAfterHoursNotification = "afterHoursNotification"
	KeyDelayRemoved           = "delayRemoved"
	KeyToggleNotification     = "toggleNotification"
	KeyHoursError             = "hoursError"
	KeySaveError              = "saveError"
	KeyHoursUpdated           = "hoursUpdated"
)

// Reasons a message was delayed.
const (
	ReasonAfterHours = "after_hours"
	ReasonHoliday    = "holiday"
)

// Outcome describes what a compose event did to the item.
type Outcome struct {
	Delayed   bool      `json:"delayed"`
	DeliverAt time.Time `json:"deliverAt,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Option configures a DelayController.
type Option func(*DelayController)

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *DelayController) {
		c.now = now
	}
}

// DelayController handles the add-in's compose, toggle, remove-delay and
// settings events. Settings are read on every event; nothing is cached
// between events.
type DelayController struct {
	settings *settings.Manager
	config   config.Config
	now      func() time.Time
	mu       sync.RWMutex
}

// NewDelayController creates a new delay controller with the provided configuration.
func NewDelayController(manager *settings.Manager, cfg config.Config, opts ...Option) *DelayController {
	c := &DelayController{
		settings: manager,
		config:   cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateConfig swaps in a reloaded configuration.
// It safely handles concurrent access from in-flight events.
func (c *DelayController) UpdateConfig(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = cfg
	c.settings.SetDefaults(settings.DefaultsFromConfig(cfg.Defaults))
	slog.Info("Controller configuration updated",
		"holidays_are_off_hours", cfg.Schedule.HolidaysAreOffHours,
	)
}

// Now returns the controller's current time.
func (c *DelayController) Now() time.Time {
	return c.now()
}

// Settings returns the current roaming settings.
func (c *DelayController) Settings(ctx context.Context) (settings.Settings, error) {
	s, err := c.settings.Load(ctx)
	if err != nil {
		metrics.SettingsErrors.WithLabelValues("load").Inc()
		return settings.Settings{}, err
	}
	return s, nil
}

// Scheduler returns the provider deciding whether mail may be sent immediately.
func (c *DelayController) Scheduler(hours schedule.BusinessHours) *schedule.CompositeProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := []schedule.Provider{schedule.NewBusinessHoursProvider(hours)}
	if c.config.Schedule.HolidaysAreOffHours {
		providers = append(providers, schedule.NewHolidayProvider())
	}
	return schedule.NewCompositeProvider(providers...)
}

// CheckAfterHours handles a new compose event. When delay send is enabled
// and now is outside business hours, it defers delivery to the start of the
// next business day and tells the user. Failures are logged and never
// block the compose event.
func (c *DelayController) CheckAfterHours(ctx context.Context, item mailbox.Item, now time.Time) Outcome {
	metrics.EventsHandled.WithLabelValues("compose").Inc()
	if now.IsZero() {
		now = c.now()
	}

	s, err := c.settings.Load(ctx)
	if err != nil {
		metrics.SettingsErrors.WithLabelValues("load").Inc()
		c.mu.RLock()
		s = settings.DefaultsFromConfig(c.config.Defaults)
		c.mu.RUnlock()
		slog.Error("Failed to load settings, using defaults", "error", err)
	}

	hours := s.BusinessHours()
	denial, err := c.Scheduler(hours).Denial(ctx, now)
	if err != nil {
		slog.Error("Error checking business hours", "error", err)
		return Outcome{}
	}

	slog.Debug("Compose event",
		"now", now,
		"outside_business_hours", denial != nil,
		"delay_enabled", s.DelaySendEnabled,
		"business_hours", hours,
	)
	if !s.DelaySendEnabled || denial == nil {
		return Outcome{}
	}

	reason := ReasonAfterHours
	if _, ok := denial.(*schedule.HolidayProvider); ok {
		reason = ReasonHoliday
	}

	deliverAt := schedule.CalculateNextBusinessDayStart(now, hours)
	if err := item.SetDelayDeliveryTime(ctx, deliverAt); err != nil {
		c.hostError(mailbox.OpSetDelayDeliveryTime, err)
		return Outcome{}
	}
	metrics.MessagesDelayed.WithLabelValues(reason).Inc()
	slog.Info("Message delivery deferred", "deliver_at", deliverAt, "reason", reason)

	c.notify(ctx, item, KeyAfterHoursNotification, mailbox.Notification{
		Type:       mailbox.Informational,
		Message:    fmt.Sprintf("Email scheduled to send at %s (next business day).", FormatDeliveryTime(deliverAt)),
		Persistent: true,
	})

	return Outcome{Delayed: true, DeliverAt: deliverAt, Reason: reason}
}

// ToggleDelaySend sets the delay-send flag to *enabled, or flips it when
// enabled is nil, and shows the new state.
func (c *DelayController) ToggleDelaySend(ctx context.Context, item mailbox.Item, enabled *bool) (bool, error) {
	metrics.EventsHandled.WithLabelValues("toggle").Inc()

	state, err := c.settings.Toggle(ctx, enabled)
	if err != nil {
		metrics.SettingsErrors.WithLabelValues("save").Inc()
		c.notify(ctx, item, KeySaveError, mailbox.Notification{
			Type:    mailbox.Error,
			Message: "Failed to save settings. Please try again.",
		})
		return false, err
	}

	message := "Delay Send feature is now disabled"
	if state {
		message = "Delay Send feature is now enabled"
	}
	c.removeNotification(ctx, item, KeyToggleNotification)
	c.notify(ctx, item, KeyToggleNotification, mailbox.Notification{
		Type:    mailbox.Informational,
		Message: message,
	})
	return state, nil
}

// RemoveDelay clears any deferred delivery so the message sends immediately.
func (c *DelayController) RemoveDelay(ctx context.Context, item mailbox.Item) error {
	metrics.EventsHandled.WithLabelValues("remove_delay").Inc()

	if err := item.SetDelayDeliveryTime(ctx, mailbox.NoDelay); err != nil {
		c.hostError(mailbox.OpSetDelayDeliveryTime, err)
		return err
	}
	metrics.DelaysRemoved.Inc()

	c.notify(ctx, item, KeyDelayRemoved, mailbox.Notification{
		Type:    mailbox.Informational,
		Message: "Delay has been removed. Email will send immediately when you click Send.",
	})
	c.removeNotification(ctx, item, KeyAfterHoursNotification)
	return nil
}

// SaveBusinessHours validates and persists a new business-hours window and
// reports the result on the item.
func (c *DelayController) SaveBusinessHours(ctx context.Context, item mailbox.Item, start, end int) (settings.Settings, error) {
	metrics.EventsHandled.WithLabelValues("save_hours").Inc()

	s, err := c.settings.SetBusinessHours(ctx, start, end)
	switch {
	case errors.Is(err, settings.ErrInvalidBusinessHours):
		c.notify(ctx, item, KeyHoursError, mailbox.Notification{
			Type:    mailbox.Error,
			Message: "Start time must be earlier than end time.",
		})
		return settings.Settings{}, err
	case err != nil:
		metrics.SettingsErrors.WithLabelValues("save").Inc()
		slog.Error("Failed to save business hours", "error", err)
		c.notify(ctx, item, KeySaveError, mailbox.Notification{
			Type:    mailbox.Error,
			Message: "Failed to save business hours. Please try again.",
		})
		return settings.Settings{}, err
	}

	slog.Info("Business hours saved", "start", s.BusinessStartHour, "end", s.BusinessEndHour)
	c.notify(ctx, item, KeyHoursUpdated, mailbox.Notification{
		Type:    mailbox.Informational,
		Message: fmt.Sprintf("Business hours updated to %s - %s.", FormatHour(s.BusinessStartHour), FormatHour(s.BusinessEndHour)),
	})
	return s, nil
}

func (c *DelayController) notify(ctx context.Context, item mailbox.Item, key string, n mailbox.Notification) {
	if n.Icon == "" {
		n.Icon = mailbox.DefaultIcon
	}
	if err := item.AddNotification(ctx, key, n); err != nil {
		c.hostError(mailbox.OpAddNotification, err)
	}
}

func (c *DelayController) removeNotification(ctx context.Context, item mailbox.Item, key string) {
	if err := item.RemoveNotification(ctx, key); err != nil {
		c.hostError(mailbox.OpRemoveNotification, err)
	}
}

func (c *DelayController) hostError(op string, err error) {
	metrics.HostErrors.WithLabelValues(op).Inc()
	slog.Error("Mailbox host call failed", "operation", op, "error", err)
}
