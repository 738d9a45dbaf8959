// Package mailbox describes the part of the mail client's host API the
// delay-send handlers drive: the deferred-delivery time of the item being
// composed and the notification banners shown above it.
package mailbox

import (
	"context"
	"time"
)

// NotificationType is the severity of a notification banner.
type NotificationType string

const (
	Informational NotificationType = "informational"
	Error         NotificationType = "error"
)

// DefaultIcon is the icon resource shown next to delay-send notifications.
const DefaultIcon = "DelaySend.16x16"

// NoDelay clears a deferred delivery when passed to SetDelayDeliveryTime.
var NoDelay = time.Unix(0, 0).UTC()

// Notification is a banner shown on the item being composed.
type Notification struct {
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	Icon       string           `json:"icon"`
	Persistent bool             `json:"persistent"`
}

// Item is the message being composed.
type Item interface {
	// SetDelayDeliveryTime stamps the item with a deferred delivery time, or clears it with NoDelay.
	SetDelayDeliveryTime(ctx context.Context, t time.Time) error

	// AddNotification shows n under key, replacing any banner with the same key.
	AddNotification(ctx context.Context, key string, n Notification) error

	// RemoveNotification removes the banner stored under key. Removing a missing key is not an error.
	RemoveNotification(ctx context.Context, key string) error
}

// IsNoDelay reports whether t clears deferred delivery.
func IsNoDelay(t time.Time) bool {
	return t.Equal(NoDelay)
}
