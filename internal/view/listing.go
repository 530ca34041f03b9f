package view

import (
	"context"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/document"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
)

// DefaultSpan is used when the excerpt names no column span
const DefaultSpan = "col-span-12"

var spanPattern = regexp.MustCompile(`col-span-(\d+)`)

// Card is one post on the listing grid
type Card struct {
	PostID  string        `json:"post_id"`
	Title   string        `json:"title"`
	Slug    string        `json:"slug"`
	Href    string        `json:"href"`
	Excerpt template.HTML `json:"excerpt,omitempty"`
	Mount   Mount         `json:"mount"`
}

// Listing is the listing page
type Listing struct {
	Cards []Card `json:"cards"`
	Empty bool   `json:"empty"`
	Error string `json:"error,omitempty"`
}

// Listing builds the listing page. A store failure yields a page carrying
// only an error message together with the wrapped error.
func (b *Builder) Listing(ctx context.Context) (*Listing, error) {
	posts, err := b.store.ListPublished(ctx, b.config.ListLimit)
	if err != nil {
		b.logger.Error("Failed to list posts", zap.Error(err))
		return &Listing{Cards: []Card{}, Error: "An error occurred while fetching posts"},
			fmt.Errorf("failed to list posts: %w", err)
	}

	published := make([]post.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published() {
			published = append(published, p)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].OrderIndex < published[j].OrderIndex
	})

	page := &Listing{Cards: make([]Card, 0, len(published))}
	for i := range published {
		p := &published[i]
		m := b.mount(frame.RoleExcerpt, p.ID, p.Title, p.ExcerptPair(), document.ExcerptOptions(), frame.ListingPolicy())
		m.Span = ColumnSpan(p.HTMLExcerpt)
		page.Cards = append(page.Cards, Card{
			PostID:  p.ID,
			Title:   p.Title,
			Slug:    p.Slug,
			Href:    Href(p.Slug),
			Excerpt: b.sanitize(p.Excerpt),
			Mount:   m,
		})
	}
	page.Empty = len(page.Cards) == 0

	return page, nil
}

// Href is the detail page path of a slug
func Href(slug string) string {
	return "/p/" + slug
}

// ColumnSpan returns the grid span named by the first col-span-N class in
// markup. Spans outside 1..12 and absent markup yield DefaultSpan.
func ColumnSpan(markup *string) string {
	text := post.Text(markup)
	if !strings.Contains(text, "col-span-") {
		return DefaultSpan
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return DefaultSpan
	}

	span := DefaultSpan
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		m := spanPattern.FindStringSubmatch(class)
		if m == nil {
			return true
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 && strconv.Itoa(n) == m[1] {
			span = "col-span-" + m[1]
		}
		return false
	})
	return span
}
