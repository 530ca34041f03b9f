package view

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/document"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
)

// Column spans of the content frame on wide screens
const (
	ContentSpanAlone    = "md:col-span-3"
	ContentSpanWithViz  = "md:col-span-2"
	VisualizationSpan   = "md:col-span-1"
	visualizationSuffix = " - Visualization"
)

// NavItem is one entry of the navigation strip
type NavItem struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Href    string `json:"href"`
	Current bool   `json:"current"`
}

// Detail is the detail page of one post
type Detail struct {
	PostID        string    `json:"post_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt,omitempty"` // plain text
	Visualization *Mount    `json:"visualization,omitempty"`
	Content       Mount     `json:"content"`
	Nav           []NavItem `json:"nav"`
	Error         string    `json:"error,omitempty"`
}

// Mounts returns the frames of the page in layout order
func (d *Detail) Mounts() []Mount {
	if d == nil || d.Error != "" {
		return nil
	}
	if d.Visualization != nil {
		return []Mount{*d.Visualization, d.Content}
	}
	return []Mount{d.Content}
}

// Detail builds the detail page for slug. A missing or unpublished post
// yields ErrRedirect; other store failures yield an error page together with
// the wrapped error.
func (b *Builder) Detail(ctx context.Context, slug string) (*Detail, error) {
	p, err := b.store.GetBySlug(ctx, slug)
	if errors.Is(err, post.ErrNotFound) {
		return nil, ErrRedirect
	}
	if err != nil {
		b.logger.Error("Failed to fetch post", zap.String("slug", slug), zap.Error(err))
		return &Detail{Slug: slug, Nav: []NavItem{}, Error: "An error occurred while fetching the post"},
			fmt.Errorf("failed to fetch post %q: %w", slug, err)
	}
	if p == nil || !p.Published() {
		return nil, ErrRedirect
	}

	page := &Detail{
		PostID:  p.ID,
		Title:   p.Title,
		Slug:    p.Slug,
		Excerpt: post.Text(p.Excerpt),
		Nav:     b.nav(ctx, slug),
	}

	pair := p.ContentPair()
	page.Content = b.mount(frame.RoleContent, p.ID, p.Title, pair.MarkupOnly(), document.ContentOptions(), b.config.Detail)
	page.Content.Span = ContentSpanAlone

	if pair.ScriptText() != "" {
		opts := document.VisualizationOptions()
		policy := b.config.Detail
		if b.config.LockVisualization {
			opts.Locked = true
			policy = frame.LockedPolicy(policy.MinHeightPx)
		}
		viz := b.mount(frame.RoleVisualization, p.ID, p.Title+visualizationSuffix, pair.ScriptOnly(), opts, policy)
		viz.Span = VisualizationSpan
		page.Visualization = &viz
		page.Content.Span = ContentSpanWithViz
	}

	return page, nil
}

// nav builds the navigation strip; failures leave it empty
func (b *Builder) nav(ctx context.Context, current string) []NavItem {
	items := []NavItem{}

	navPosts, err := b.store.ListNavPosts(ctx, b.config.NavLimit)
	if err != nil {
		b.logger.Warn("Failed to list navigation posts", zap.Error(err))
		return items
	}

	for _, np := range navPosts {
		if np.Status != "" && np.Status != post.StatusPublished {
			continue
		}
		items = append(items, NavItem{
			Title:   np.Title,
			Slug:    np.Slug,
			Href:    Href(np.Slug),
			Current: np.Slug == current,
		})
	}
	return items
}
