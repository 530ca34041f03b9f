package post

import (
	"time"
)

// Status is the publication state of a post
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Post is a content record as supplied by the Content Store
type Post struct {
	ID          string    `json:"id" db:"id" yaml:"id" toml:"id"`
	Title       string    `json:"title" db:"title" yaml:"title" toml:"title"`
	Slug        string    `json:"slug" db:"slug" yaml:"slug" toml:"slug"`
	Excerpt     *string   `json:"excerpt" db:"excerpt" yaml:"excerpt" toml:"excerpt"`
	HTMLExcerpt *string   `json:"html_excerpt" db:"html_excerpt" yaml:"html_excerpt" toml:"html_excerpt"`
	JSExcerpt   *string   `json:"js_excerpt" db:"js_excerpt" yaml:"js_excerpt" toml:"js_excerpt"`
	HTMLContent *string   `json:"html_content" db:"html_content" yaml:"html_content" toml:"html_content"`
	JSContent   *string   `json:"js_content" db:"js_content" yaml:"js_content" toml:"js_content"`
	Status      Status    `json:"status" db:"status" yaml:"status" toml:"status"`
	OrderIndex  int       `json:"order_index" db:"order_index" yaml:"order_index" toml:"order_index"`
	CreatedAt   time.Time `json:"created_at" db:"-" yaml:"created_at" toml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"-" yaml:"updated_at" toml:"updated_at"`
}

// NavPost is the lightweight record used for the cross-post navigation strip
type NavPost struct {
	Title      string `json:"title" db:"title"`
	Slug       string `json:"slug" db:"slug"`
	OrderIndex int    `json:"order_index" db:"order_index"`
	Status     Status `json:"status" db:"status"`
}

// Published reports whether the post may be rendered
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// ExcerptPair returns the fragments rendered on the listing view
func (p *Post) ExcerptPair() FragmentPair {
	return FragmentPair{Markup: p.HTMLExcerpt, Script: p.JSExcerpt}
}

// ContentPair returns the full fragments rendered on the detail view
func (p *Post) ContentPair() FragmentPair {
	return FragmentPair{Markup: p.HTMLContent, Script: p.JSContent}
}

// Nav projects the post onto its navigation record
func (p *Post) Nav() NavPost {
	return NavPost{
		Title:      p.Title,
		Slug:       p.Slug,
		OrderIndex: p.OrderIndex,
		Status:     p.Status,
	}
}

// FragmentPair is the unit of renderable content. Either field may be nil.
type FragmentPair struct {
	Markup *string
	Script *string
}

// MarkupText returns the markup fragment, empty when absent
func (f FragmentPair) MarkupText() string {
	return Text(f.Markup)
}

// ScriptText returns the script fragment, empty when absent
func (f FragmentPair) ScriptText() string {
	return Text(f.Script)
}

// Empty reports whether neither fragment carries any text
func (f FragmentPair) Empty() bool {
	return f.MarkupText() == "" && f.ScriptText() == ""
}

// ScriptOnly drops the markup fragment
func (f FragmentPair) ScriptOnly() FragmentPair {
	return FragmentPair{Script: f.Script}
}

// MarkupOnly drops the script fragment
func (f FragmentPair) MarkupOnly() FragmentPair {
	return FragmentPair{Markup: f.Markup}
}

// Text dereferences an optional fragment; nil yields ""
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to s
func Ptr(s string) *string {
	return &s
}
