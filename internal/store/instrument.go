// Package store holds the Content Store backends and the decorators shared by
// all of them.
package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/resilience"
)

// Instrumented records timing and errors for every call to a Content Store
type Instrumented struct {
	inner   post.Store
	name    string
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

var _ post.Store = (*Instrumented)(nil)

// Instrument wraps inner; metrics and logger may be nil
func Instrument(inner post.Store, name string, metrics *monitoring.Metrics, logger *logging.Logger) *Instrumented {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Instrumented{
		inner:   inner,
		name:    name,
		metrics: metrics,
		logger:  logger.Named("store"),
	}
}

// ListPublished implements post.Store
func (s *Instrumented) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	timer := monitoring.NewTimer(s.metrics, s.name, "list_published")
	posts, err := s.inner.ListPublished(ctx, limit)
	s.observe(timer, "list_published", err)
	return posts, err
}

// GetBySlug implements post.Store
func (s *Instrumented) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	timer := monitoring.NewTimer(s.metrics, s.name, "get_by_slug")
	p, err := s.inner.GetBySlug(ctx, slug)
	s.observe(timer, "get_by_slug", err)
	return p, err
}

// ListNavPosts implements post.Store
func (s *Instrumented) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	timer := monitoring.NewTimer(s.metrics, s.name, "list_nav")
	nav, err := s.inner.ListNavPosts(ctx, limit)
	s.observe(timer, "list_nav", err)
	return nav, err
}

func (s *Instrumented) observe(timer *monitoring.Timer, op string, err error) {
	status := Classify(err)
	timer.Stop(status)
	if status == "ok" || status == "not_found" {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordStoreError(s.name, op, status)
	}
	s.logger.Error("Content store call failed",
		zap.String("store", s.name),
		zap.String("operation", op),
		zap.String("kind", status),
		zap.Error(err))
}

// Classify maps a store error onto a metric label
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, post.ErrNotFound):
		return "not_found"
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
