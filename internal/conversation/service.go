// Package conversation composes contact lists and message threads from the
// store and applies the message and user state transitions.
package conversation

import (
	"context"
	"time"

	"chatapp/server/internal/store"
)

// Service is safe for concurrent use as long as the underlying store is.
type Service struct {
	store   store.Store
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds every store call made by a single operation.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service on top of st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:   st,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
