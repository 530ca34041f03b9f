// Package memory implements the Content Store in memory, optionally seeded
// from YAML or TOML files.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
)

// Store is an in-memory Content Store keyed by slug. Ids are unique across
// slugs.
type Store struct {
	mu    sync.RWMutex
	posts map[string]post.Post
	slugs map[string]string // id -> slug
}

var _ post.Store = (*Store)(nil)

// New creates a store holding posts. A later post replaces an earlier one
// with the same slug; an id shared by two slugs fails with post.ErrDuplicateID.
func New(posts ...post.Post) (*Store, error) {
	s := &Store{
		posts: make(map[string]post.Post, len(posts)),
		slugs: make(map[string]string, len(posts)),
	}
	for _, p := range posts {
		if err := s.Put(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put inserts or replaces the post with p's slug
func (s *Store) Put(p post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.slugs[p.ID]; ok && owner != p.Slug {
		return fmt.Errorf("%w: %q used by %q and %q", post.ErrDuplicateID, p.ID, owner, p.Slug)
	}
	if old, ok := s.posts[p.Slug]; ok {
		delete(s.slugs, old.ID)
	}
	s.posts[p.Slug] = p
	s.slugs[p.ID] = p.Slug
	return nil
}

// Delete removes the post with slug
func (s *Store) Delete(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.posts[slug]; ok {
		delete(s.slugs, old.ID)
		delete(s.posts, slug)
	}
}

// Len returns the number of stored posts, published or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// ListPublished returns published posts ordered by OrderIndex
func (s *Store) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.published(limit), nil
}

// GetBySlug returns the published post with slug
func (s *Store) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	p, ok := s.posts[slug]
	s.mu.RUnlock()

	if !ok || !p.Published() {
		return nil, post.ErrNotFound
	}
	return &p, nil
}

// ListNavPosts returns navigation records of published posts
func (s *Store) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := s.published(limit)
	nav := make([]post.NavPost, 0, len(posts))
	for i := range posts {
		nav = append(nav, posts[i].Nav())
	}
	return nav, nil
}

func (s *Store) published(limit int) []post.Post {
	s.mu.RLock()
	out := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.Published() {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
