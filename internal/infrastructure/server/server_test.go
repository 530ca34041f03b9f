package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/domain/post/posttest"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostFrame/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	cfg.Sandbox.PoolSize = 1
	return cfg
}

func newTestServer(t *testing.T, store post.Store) *Server {
	t.Helper()
	s, err := New(testConfig(), store, monitoring.NewMetrics(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seeded(t *testing.T) post.Store {
	t.Helper()
	s, err := memory.New(
		posttest.Published("1", "one", 1, `<div class="col-span-6">one</div>`, "", "<p>Hello</p>", "var drawn = true;"),
		posttest.Published("2", "two", 2, "<p>two</p>", "", "<p>Only text</p>", ""),
	)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListingPage(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="iframe-1"`)
	assert.Contains(t, body, `id="iframe-2"`)
	assert.Contains(t, body, `class="col-span-6`)
	assert.Contains(t, body, `href="/p/one"`)
	assert.Contains(t, body, `/static/host.js`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDetailPage(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/p/one")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="iframe-viz-1"`)
	assert.Contains(t, body, `id="iframe-content-1"`)
	assert.Contains(t, body, "md:col-span-2")
	assert.Contains(t, body, `aria-current="page"`)

	rec = get(t, s, "/p/two")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "iframe-viz-2")
	assert.Contains(t, rec.Body.String(), "md:col-span-3")
}

func TestUnknownPostRedirects(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/p/missing")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(t, s, "/api/posts/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"post not found","redirect":"/"}`, rec.Body.String())
}

func TestJSONViews(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Cards []struct {
			PostID string `json:"post_id"`
			Mount  struct {
				Span  string `json:"span"`
				Frame struct {
					ID     string `json:"id"`
					Height string `json:"height"`
				} `json:"frame"`
			} `json:"mount"`
		} `json:"cards"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Cards, 2)
	assert.Equal(t, "1", listing.Cards[0].Mount.Frame.ID)
	assert.Equal(t, "150px", listing.Cards[0].Mount.Frame.Height)
	assert.Equal(t, "col-span-6", listing.Cards[0].Mount.Span)
	assert.Equal(t, "col-span-12", listing.Cards[1].Mount.Span)

	rec = get(t, s, "/api/posts/one")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Visualization *struct {
			Frame struct {
				ID string `json:"id"`
			} `json:"frame"`
		} `json:"visualization"`
		Content struct {
			Frame struct {
				ID     string `json:"id"`
				Height string `json:"height"`
			} `json:"frame"`
		} `json:"content"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &detail))
	require.NotNil(t, detail.Visualization)
	assert.Equal(t, "viz-1", detail.Visualization.Frame.ID)
	assert.Equal(t, "content-1", detail.Content.Frame.ID)
	assert.Equal(t, "100vh", detail.Content.Frame.Height)
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/api/posts/one/diagnostics?content_height=320")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Frames []struct {
			Role      string `json:"role"`
			Diagnosis struct {
				ID          string `json:"id"`
				FinalHeight string `json:"final_height"`
				Reports     []struct {
					Height float64 `json:"height"`
				} `json:"reports"`
			} `json:"diagnosis"`
		} `json:"frames"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Frames, 2)
	assert.Equal(t, "viz", result.Frames[0].Role)
	assert.Equal(t, "viz-1", result.Frames[0].Diagnosis.ID)
	assert.Equal(t, "content-1", result.Frames[1].Diagnosis.ID)
	for _, f := range result.Frames {
		assert.Equal(t, "320px", f.Diagnosis.FinalHeight)
		assert.NotEmpty(t, f.Diagnosis.Reports)
	}

	rec = get(t, s, "/api/posts/one/diagnostics?content_height=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailure(t *testing.T) {
	store := &posttest.MockStore{}
	store.On("ListPublished", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	store.On("GetBySlug", mock.Anything, "one").Return(nil, errors.New("connection refused"))
	s := newTestServer(t, store)

	rec := get(t, s, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.NotContains(t, rec.Body.String(), "<iframe")

	rec = get(t, s, "/api/posts")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = get(t, s, "/p/one")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<iframe")
}

func TestStaticAndOperations(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/static/host.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data.type !== "resize"`)

	_ = get(t, s, "/")
	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "postframe_frames_rendered_total")
	assert.Contains(t, rec.Body.String(), "postframe_http_requests_total")

	rec = get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"sandbox"`)
}

func TestGzip(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/", "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	seed := []byte("posts:\n  - id: a\n    title: A\n    slug: a\n    html_content: <p>a</p>\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.yaml"), seed, 0o600))

	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig()
			cfg.Store.Driver = driver
			cfg.Store.DSN = ":memory:"
			cfg.Store.SeedGlob = filepath.Join(dir, "*.yaml")

			store, release, err := OpenStore(context.Background(), cfg, monitoring.NewMetrics(), nil)
			require.NoError(t, err)
			defer release()

			p, err := store.GetBySlug(context.Background(), "a")
			require.NoError(t, err)
			assert.Equal(t, "A", p.Title)
		})
	}

	cfg := testConfig()
	cfg.Store.Driver = "mongo"
	_, _, err := OpenStore(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
