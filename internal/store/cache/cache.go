// Package cache provides a redis read-through decorator for a Content Store.
//
// Cache failures never fail a read: the decorator logs, records the failure
// and falls through to the wrapped store.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
)

// missMarker is cached for slugs the inner store does not know
const missMarker = "-"

// Recorder receives cache outcomes
type Recorder interface {
	RecordCacheResult(operation, result string)
}

// Config controls key naming and expiry
type Config struct {
	Prefix      string
	TTL         time.Duration
	NotFoundTTL time.Duration
}

// DefaultConfig returns the standard cache settings
func DefaultConfig() Config {
	return Config{
		Prefix:      "postframe:",
		TTL:         time.Minute,
		NotFoundTTL: 10 * time.Second,
	}
}

// Store wraps a post.Store with a redis cache
type Store struct {
	inner    post.Store
	client   redis.UniversalClient
	cfg      Config
	recorder Recorder
	logger   *logging.Logger
}

var _ post.Store = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		s.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger.Named("cache")
	}
}

// New wraps inner with client
func New(inner post.Store, client redis.UniversalClient, cfg Config, opts ...Option) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	s := &Store{
		inner:  inner,
		client: client,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPublished returns the cached listing or loads it from the inner store
func (s *Store) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	key := s.key("list", strconv.Itoa(limit))
	var posts []post.Post
	if s.get(ctx, "list", key, &posts) {
		return posts, nil
	}

	posts, err := s.inner.ListPublished(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.set(ctx, "list", key, posts, s.cfg.TTL)
	return posts, nil
}

// GetBySlug returns the cached post or loads it from the inner store.
// Unknown slugs are remembered for NotFoundTTL.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	key := s.key("post", slug)

	raw, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil && raw == missMarker:
		s.record("get", "hit")
		return nil, post.ErrNotFound
	case err == nil:
		var p post.Post
		if err := sonic.UnmarshalString(raw, &p); err == nil {
			s.record("get", "hit")
			return &p, nil
		}
		s.fail("get", key, err)
	case errors.Is(err, redis.Nil):
		s.record("get", "miss")
	default:
		s.fail("get", key, err)
	}

	p, err := s.inner.GetBySlug(ctx, slug)
	if errors.Is(err, post.ErrNotFound) {
		if s.cfg.NotFoundTTL > 0 {
			if err := s.client.Set(ctx, key, missMarker, s.cfg.NotFoundTTL).Err(); err != nil {
				s.fail("get", key, err)
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.set(ctx, "get", key, p, s.cfg.TTL)
	return p, nil
}

// ListNavPosts returns the cached navigation strip or loads it
func (s *Store) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	key := s.key("nav", strconv.Itoa(limit))
	var nav []post.NavPost
	if s.get(ctx, "nav", key, &nav) {
		return nav, nil
	}

	nav, err := s.inner.ListNavPosts(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.set(ctx, "nav", key, nav, s.cfg.TTL)
	return nav, nil
}

// Invalidate drops every key under the prefix
func (s *Store) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.cfg.Prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) key(kind, id string) string {
	return s.cfg.Prefix + kind + ":" + id
}

func (s *Store) get(ctx context.Context, op, key string, out any) bool {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.record(op, "miss")
		return false
	}
	if err != nil {
		s.fail(op, key, err)
		return false
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		s.fail(op, key, err)
		return false
	}
	s.record(op, "hit")
	return true
}

func (s *Store) set(ctx context.Context, op, key string, value any, ttl time.Duration) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		s.fail(op, key, err)
		return
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.fail(op, key, err)
	}
}

func (s *Store) fail(op, key string, err error) {
	s.record(op, "error")
	s.logger.Warn("Cache operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err))
}

func (s *Store) record(op, result string) {
	if s.recorder != nil {
		s.recorder.RecordCacheResult(op, result)
	}
}
