package schedule

import (
	"context"
	"log/slog"
	"time"
)

// CompositeProvider combines multiple schedule providers.
// It is work time only if every provider agrees.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a new composite provider with the given providers
func NewCompositeProvider(providers ...Provider) *CompositeProvider {
	return &CompositeProvider{
		providers: providers,
	}
}

// Denial returns the first provider that reports off-time for t, or nil when
// all of them report work time.
func (p *CompositeProvider) Denial(ctx context.Context, t time.Time) (Provider, error) {
	for _, provider := range p.providers {
		isWork, err := provider.IsWorkTime(ctx, t)
		if err != nil {
			return nil, err
		}
		slog.Debug("IsWorkTime", "provider", provider, "isWork", isWork)
		if !isWork {
			return provider, nil
		}
	}
	return nil, nil
}

// IsWorkTime returns true only if all providers agree it's work time.
// A composite without providers never reports work time.
func (p *CompositeProvider) IsWorkTime(ctx context.Context, t time.Time) (bool, error) {
	if len(p.providers) == 0 {
		return false, nil
	}
	denied, err := p.Denial(ctx, t)
	if err != nil {
		return false, err
	}
	return denied == nil, nil
}
