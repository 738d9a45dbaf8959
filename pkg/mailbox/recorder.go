package mailbox

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Operation names used in recorded actions and for injecting failures.
const (
	OpSetDelayDeliveryTime = "setDelayDeliveryTime"
	OpAddNotification      = "addNotification"
	OpRemoveNotification   = "removeNotification"
)

// Action is a host API call recorded by a Recorder. The add-in replays
// actions in order against the real mailbox.
type Action struct {
	Op           string        `json:"op"`
	DeliveryTime *time.Time    `json:"deliveryTime,omitempty"`
	Key          string        `json:"key,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Recorder is an in-memory Item. It tracks the resulting item state and
// the ordered actions that produced it.
type Recorder struct {
	mu            sync.Mutex
	deliveryTime  time.Time
	notifications map[string]Notification
	actions       []Action
	failures      map[string]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		notifications: make(map[string]Notification),
		failures:      make(map[string]error),
	}
}

// FailOn makes every later call of op return err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

func (r *Recorder) SetDelayDeliveryTime(ctx context.Context, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failures[OpSetDelayDeliveryTime]; err != nil {
		return fmt.Errorf("%s: %w", OpSetDelayDeliveryTime, err)
	}
	if IsNoDelay(t) {
		r.deliveryTime = time.Time{}
	} else {
		r.deliveryTime = t
	}
	r.actions = append(r.actions, Action{Op: OpSetDelayDeliveryTime, DeliveryTime: &t})
	return nil
}

func (r *Recorder) AddNotification(ctx context.Context, key string, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failures[OpAddNotification]; err != nil {
		return fmt.Errorf("%s: %w", OpAddNotification, err)
	}
	if n.Icon == "" {
		n.Icon = DefaultIcon
	}
	r.notifications[key] = n
	r.actions = append(r.actions, Action{Op: OpAddNotification, Key: key, Notification: &n})
	return nil
}

func (r *Recorder) RemoveNotification(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failures[OpRemoveNotification]; err != nil {
		return fmt.Errorf("%s: %w", OpRemoveNotification, err)
	}
	delete(r.notifications, key)
	r.actions = append(r.actions, Action{Op: OpRemoveNotification, Key: key})
	return nil
}

// DeliveryTime returns the deferred delivery time, or the zero time when mail sends immediately.
func (r *Recorder) DeliveryTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveryTime
}

// Notification returns the banner shown under key.
func (r *Recorder) Notification(key string) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[key]
	return n, ok
}

// Actions returns a copy of the recorded actions in call order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}
