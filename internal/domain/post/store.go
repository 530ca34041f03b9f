package post

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no published post matches a slug
var ErrNotFound = errors.New("post not found")

// ErrDuplicateID is returned when two posts with different slugs share an id.
// The id becomes the sandbox identifier of the post's frames, which must be
// unique on a page.
var ErrDuplicateID = errors.New("duplicate post id")

const (
	// DefaultListLimit bounds the listing view
	DefaultListLimit = 100
	// DefaultNavLimit bounds the navigation strip
	DefaultNavLimit = 20
)

// Store is the read-only Content Store consumed by the views
type Store interface {
	// ListPublished returns published posts ordered by OrderIndex ascending
	ListPublished(ctx context.Context, limit int) ([]Post, error)
	// GetBySlug returns the published post with the given slug or ErrNotFound
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	// ListNavPosts returns navigation records of published posts ordered by OrderIndex
	ListNavPosts(ctx context.Context, limit int) ([]NavPost, error)
}
