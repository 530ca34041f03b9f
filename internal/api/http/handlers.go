package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/emulator"
	"github.com/GriffinCanCode/PostFrame/internal/view"
)

const maxContentHeight = 100000

// Diagnoser runs synthesized documents in the sandbox emulator
type Diagnoser interface {
	Diagnose(ctx context.Context, probe emulator.Probe) (*emulator.Diagnosis, error)
	Stats() map[string]interface{}
}

// Options holds the handler settings taken from configuration
type Options struct {
	SiteTitle    string
	StrictOrigin bool
	HostOrigin   string
	Settle       time.Duration
}

// Handlers contains all HTTP handlers
type Handlers struct {
	views     *view.Builder
	diagnoser Diagnoser
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	opts      Options
}

// NewHandlers creates a new handler set; diagnoser and metrics may be nil
func NewHandlers(views *view.Builder, diagnoser Diagnoser, metrics *monitoring.Metrics, logger *logging.Logger, opts Options) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.SiteTitle == "" {
		opts.SiteTitle = "Posts"
	}
	return &Handlers{
		views:     views,
		diagnoser: diagnoser,
		metrics:   metrics,
		logger:    logger.Named("http"),
		opts:      opts,
	}
}

// pageData is the template context of both pages
type pageData struct {
	Title        string
	StrictOrigin bool
	Page         any
}

// Index renders the listing page
func (h *Handlers) Index(c *gin.Context) {
	page, err := h.views.Listing(c.Request.Context())
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	c.HTML(status, "listing.html", pageData{
		Title:        h.opts.SiteTitle,
		StrictOrigin: h.opts.StrictOrigin,
		Page:         page,
	})
}

// Post renders the detail page of one post
func (h *Handlers) Post(c *gin.Context) {
	page, err := h.views.Detail(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, view.ErrRedirect) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	status := http.StatusOK
	title := h.opts.SiteTitle
	if err != nil {
		status = http.StatusBadGateway
	} else {
		title = page.Title
	}
	c.HTML(status, "detail.html", pageData{
		Title:        title,
		StrictOrigin: h.opts.StrictOrigin,
		Page:         page,
	})
}

// ListPosts returns the listing page as JSON
func (h *Handlers) ListPosts(c *gin.Context) {
	page, err := h.views.Listing(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, page)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns the detail page of one post as JSON
func (h *Handlers) GetPost(c *gin.Context) {
	page, err := h.views.Detail(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, view.ErrRedirect) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "post not found",
			"redirect": "/",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, page)
		return
	}
	c.JSON(http.StatusOK, page)
}

// frameDiagnosis is the emulated outcome of one frame
type frameDiagnosis struct {
	Role      string             `json:"role"`
	Policy    any                `json:"policy"`
	Diagnosis *emulator.Diagnosis `json:"diagnosis"`
}

// Diagnostics runs every frame of a post in the sandbox emulator and returns
// the size reports each one emitted
func (h *Handlers) Diagnostics(c *gin.Context) {
	if h.diagnoser == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sandbox emulator disabled"})
		return
	}

	contentHeight := 0
	if raw := c.Query("content_height"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxContentHeight {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content_height must be an integer between 0 and 100000"})
			return
		}
		contentHeight = n
	}

	ctx := c.Request.Context()
	slug := c.Param("slug")
	page, err := h.views.Detail(ctx, slug)
	if errors.Is(err, view.ErrRedirect) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found", "redirect": "/"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": page.Error})
		return
	}

	origin := ""
	if h.opts.StrictOrigin {
		origin = h.opts.HostOrigin
	}

	frames := make([]frameDiagnosis, 0, 2)
	for _, m := range page.Mounts() {
		result, err := h.diagnoser.Diagnose(ctx, emulator.Probe{
			Document:      m.Frame.SrcDoc,
			ID:            m.Frame.ID,
			Title:         m.Frame.Title,
			Policy:        m.Frame.Policy,
			ContentHeight: contentHeight,
			Settle:        h.opts.Settle,
			Origin:        origin,
		})
		if err != nil {
			h.logger.Error("Diagnosis failed",
				zap.String("slug", slug),
				zap.String("frame", m.Frame.ID),
				zap.Error(err))
			c.JSON(diagnosisStatus(err), gin.H{"error": err.Error(), "frame": m.Frame.ID})
			return
		}
		if h.metrics != nil {
			h.metrics.RecordDiagnosis(string(m.Role), len(result.Reports), len(result.Errors))
		}
		frames = append(frames, frameDiagnosis{
			Role:      string(m.Role),
			Policy:    m.Frame.Policy,
			Diagnosis: result,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":           page.Slug,
		"content_height": contentHeight,
		"frames":         frames,
	})
}

func diagnosisStatus(err error) int {
	switch {
	case errors.Is(err, emulator.ErrPoolClosed), errors.Is(err, emulator.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "healthy"}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if h.diagnoser != nil {
		body["sandbox"] = h.diagnoser.Stats()
	}
	c.JSON(http.StatusOK, body)
}
