// Package rest implements the Content Store against a PostgREST-compatible
// HTTP API, such as the REST endpoint of a Supabase project.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/resilience"
)

const (
	postSelect = "id,title,slug,excerpt,html_excerpt,js_excerpt,html_content,js_content,status,order_index,created_at,updated_at"
	navSelect  = "title,slug,order_index,status"
	maxErrBody = 512
)

// Config defines the REST store connection
type Config struct {
	BaseURL      string // e.g. https://<project>.supabase.co/rest/v1
	APIKey       string
	Table        string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns the standard client settings; BaseURL must be set
func DefaultConfig() Config {
	return Config{
		Table:        "posts",
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// StatusError is a non-2xx response from the API
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Code, e.Body)
}

// Store is a Content Store backed by a PostgREST API
type Store struct {
	client  *resty.Client
	breaker *resilience.Breaker
	table   string
	logger  *logging.Logger
}

var _ post.Store = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger.Named("rest-store")
	}
}

// WithBreaker replaces the default circuit breaker
func WithBreaker(b *resilience.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

// New creates a REST store. Retries happen in the transport; the breaker sees
// one outcome per logical call.
func New(cfg Config, opts ...Option) *Store {
	if cfg.Table == "" {
		cfg.Table = DefaultConfig().Table
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	client := resty.New().
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient}).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "PostFrame/1.0")
	if cfg.APIKey != "" {
		client.SetHeader("apikey", cfg.APIKey).SetAuthToken(cfg.APIKey)
	}
	client.JSONMarshal = sonic.ConfigStd.Marshal
	client.JSONUnmarshal = sonic.ConfigStd.Unmarshal

	s := &Store{
		client: client,
		table:  cfg.Table,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = resilience.New("rest-store", resilience.Settings{
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to resilience.State) {
				s.logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, post.ErrNotFound)
			},
		})
	}
	return s
}

// Breaker returns the circuit breaker guarding the API
func (s *Store) Breaker() *resilience.Breaker {
	return s.breaker
}

// ListPublished returns published posts ordered by order_index
func (s *Store) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	posts := []post.Post{}
	query := publishedQuery(postSelect, limit)
	if err := s.fetch(ctx, "list posts", query, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBySlug returns the published post with slug
func (s *Store) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	var posts []post.Post
	query := publishedQuery(postSelect, 1)
	query.Set("slug", "eq."+slug)
	if err := s.fetch(ctx, "get post", query, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, post.ErrNotFound
	}
	return &posts[0], nil
}

// ListNavPosts returns navigation records of published posts
func (s *Store) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	nav := []post.NavPost{}
	query := publishedQuery(navSelect, limit)
	if err := s.fetch(ctx, "list navigation posts", query, &nav); err != nil {
		return nil, err
	}
	return nav, nil
}

func publishedQuery(columns string, limit int) url.Values {
	query := url.Values{}
	query.Set("select", columns)
	query.Set("status", "eq."+string(post.StatusPublished))
	query.Set("order", "order_index.asc")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query
}

func (s *Store) fetch(ctx context.Context, op string, query url.Values, out any) error {
	_, err := resilience.Call(s.breaker, func() (struct{}, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(query).
			SetResult(out).
			Get("/" + s.table)
		if err != nil {
			return struct{}{}, fmt.Errorf("%s: %w", op, err)
		}
		if resp.IsError() {
			body := resp.String()
			if len(body) > maxErrBody {
				body = body[:maxErrBody]
			}
			return struct{}{}, &StatusError{Op: op, Code: resp.StatusCode(), Body: body}
		}
		return struct{}{}, nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}
