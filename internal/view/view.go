package view

import (
	"errors"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/document"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
)

// ErrRedirect means the requested post does not exist and the caller should
// send the visitor to the listing
var ErrRedirect = errors.New("post not found, redirect to listing")

// Recorder receives one call per synthesized frame
type Recorder interface {
	RecordFrame(role string, docBytes int)
}

// Config controls page assembly
type Config struct {
	ListLimit         int
	NavLimit          int
	Detail            frame.Policy // Policy of both detail frames
	LockVisualization bool         // Pin the visualization frame to its container
	TargetOrigin      string       // Target origin of size reports
	CSSFrameworkURL   string
	DrawingLibraryURL string
}

// DefaultConfig returns the standard page configuration
func DefaultConfig() Config {
	return Config{
		ListLimit:    post.DefaultListLimit,
		NavLimit:     post.DefaultNavLimit,
		Detail:       frame.DefaultPolicy(),
		TargetOrigin: document.DefaultTargetOrigin,
	}
}

// Mount is one frame of a page
type Mount struct {
	Role  frame.Role  `json:"role"`
	Frame frame.Frame `json:"frame"`
	Span  string      `json:"span"`
}

// Markup renders the iframe element of the mount
func (m Mount) Markup() template.HTML {
	return m.Frame.Markup()
}

// Builder assembles pages from a Content Store
type Builder struct {
	store     post.Store
	config    Config
	logger    *logging.Logger
	recorder  Recorder
	sanitizer *bluemonday.Policy
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(b *Builder) {
		b.logger = logger.Named("view")
	}
}

// WithRecorder reports every synthesized frame to r
func WithRecorder(r Recorder) Option {
	return func(b *Builder) {
		b.recorder = r
	}
}

// NewBuilder creates a page builder
func NewBuilder(store post.Store, config Config, opts ...Option) *Builder {
	if config.ListLimit <= 0 {
		config.ListLimit = post.DefaultListLimit
	}
	if config.NavLimit <= 0 {
		config.NavLimit = post.DefaultNavLimit
	}
	config.Detail = config.Detail.Normalized()

	b := &Builder{
		store:     store,
		config:    config,
		logger:    logging.NewNop(),
		sanitizer: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the effective configuration
func (b *Builder) Config() Config {
	return b.config
}

func (b *Builder) options(base document.Options) document.Options {
	return base.
		WithAssets(b.config.CSSFrameworkURL, b.config.DrawingLibraryURL).
		WithTargetOrigin(b.config.TargetOrigin)
}

// mount synthesizes the document of one frame
func (b *Builder) mount(role frame.Role, postID, title string, pair post.FragmentPair, opts document.Options, policy frame.Policy) Mount {
	id := frame.Identifier(role, postID)
	doc := document.Synthesize(pair, id, b.options(opts))
	if b.recorder != nil {
		b.recorder.RecordFrame(string(role), len(doc))
	}
	return Mount{
		Role:  role,
		Frame: frame.New(doc, id, title, policy),
	}
}

// sanitize renders untrusted text shown outside any sandbox
func (b *Builder) sanitize(s *string) template.HTML {
	text := post.Text(s)
	if text == "" {
		return ""
	}
	return template.HTML(b.sanitizer.Sanitize(text))
}
