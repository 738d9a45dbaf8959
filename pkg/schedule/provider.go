package schedule

import (
	"context"
	"time"
)

// Provider defines the interface for checking business hours
type Provider interface {
	// IsWorkTime checks if the given time is within business hours
	IsWorkTime(ctx context.Context, t time.Time) (bool, error)
}
