package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/resilience"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.APIKey = "anon-key"
	cfg.RetryMax = 0
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestListPublished(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "eq.published", q.Get("status"))
		assert.Equal(t, "order_index.asc", q.Get("order"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, postSelect, q.Get("select"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"p1","title":"One","slug":"one","excerpt":null,"html_excerpt":"<p>x</p>","js_excerpt":null,
			 "html_content":null,"js_content":"draw()","status":"published","order_index":1,
			 "created_at":"2024-05-01T10:00:00.123456+00:00","updated_at":"2024-05-02T10:00:00+00:00"}
		]`))
	}))
	defer server.Close()

	s := New(testConfig(server.URL))
	posts, err := s.ListPublished(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "p1", p.ID)
	assert.Nil(t, p.Excerpt)
	assert.Equal(t, "<p>x</p>", post.Text(p.HTMLExcerpt))
	assert.Equal(t, "draw()", post.Text(p.JSContent))
	assert.Equal(t, post.StatusPublished, p.Status)
	assert.Equal(t, 2024, p.CreatedAt.Year())
}

func TestGetBySlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("slug") {
		case "eq.one":
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"id":"p1","title":"One","slug":"one","status":"published","order_index":0}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	s := New(testConfig(server.URL))

	p, err := s.GetBySlug(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = s.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, post.ErrNotFound)
	assert.Equal(t, resilience.StateClosed, s.Breaker().State())
}

func TestListNavPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, navSelect, r.URL.Query().Get("select"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title":"One","slug":"one","order_index":1,"status":"published"}]`))
	}))
	defer server.Close()

	nav, err := New(testConfig(server.URL)).ListNavPosts(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []post.NavPost{{Title: "One", Slug: "one", OrderIndex: 1, Status: post.StatusPublished}}, nav)
}

func TestErrorStatusAndBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"column posts.nope does not exist"}`))
	}))
	defer server.Close()

	breaker := resilience.New("test", resilience.Settings{
		Timeout: time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})
	s := New(testConfig(server.URL), WithBreaker(breaker))

	for i := 0; i < 2; i++ {
		_, err := s.ListPublished(context.Background(), 10)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadRequest, statusErr.Code)
		assert.Contains(t, statusErr.Body, "does not exist")
	}

	_, err := s.ListPublished(context.Background(), 10)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryMax = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond

	posts, err := New(cfg).ListPublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int32(2), calls.Load())
}
