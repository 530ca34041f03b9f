package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
)

const postColumns = `id, title, slug, excerpt, html_excerpt, js_excerpt, html_content, js_content, status, order_index`

const (
	listPublishedQuery = `SELECT ` + postColumns + ` FROM posts WHERE status = ? ORDER BY order_index ASC, id ASC LIMIT ?`
	getBySlugQuery     = `SELECT ` + postColumns + ` FROM posts WHERE slug = ? AND status = ? LIMIT 1`
	listNavQuery       = `SELECT title, slug, order_index, status FROM posts WHERE status = ? ORDER BY order_index ASC, id ASC LIMIT ?`

	upsertQuery = `INSERT INTO posts (` + postColumns + `)
VALUES (:id, :title, :slug, :excerpt, :html_excerpt, :js_excerpt, :html_content, :js_content, :status, :order_index)
ON CONFLICT (slug) DO UPDATE SET
	id = excluded.id,
	title = excluded.title,
	excerpt = excluded.excerpt,
	html_excerpt = excluded.html_excerpt,
	js_excerpt = excluded.js_excerpt,
	html_content = excluded.html_content,
	js_content = excluded.js_content,
	status = excluded.status,
	order_index = excluded.order_index,
	updated_at = CURRENT_TIMESTAMP`
)

// Schema creates the posts table; it is valid for both drivers
const Schema = `CREATE TABLE IF NOT EXISTS posts (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	slug         TEXT NOT NULL UNIQUE,
	excerpt      TEXT,
	html_excerpt TEXT,
	js_excerpt   TEXT,
	html_content TEXT,
	js_content   TEXT,
	status       TEXT NOT NULL DEFAULT 'draft',
	order_index  INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store is a Content Store backed by a SQL database
type Store struct {
	db *sqlx.DB

	listPublished string
	getBySlug     string
	listNav       string
}

var _ post.Store = (*Store)(nil)

// New creates a store on db, rebinding its queries for db's driver
func New(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		listPublished: db.Rebind(listPublishedQuery),
		getBySlug:     db.Rebind(getBySlugQuery),
		listNav:       db.Rebind(listNavQuery),
	}
}

// Migrate creates the posts table when it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}
	return nil
}

// ListPublished returns published posts ordered by order_index
func (s *Store) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	var posts []post.Post
	if err := s.db.SelectContext(ctx, &posts, s.listPublished, post.StatusPublished, limit); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return posts, nil
}

// GetBySlug returns the published post with slug
func (s *Store) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	var p post.Post
	err := s.db.GetContext(ctx, &p, s.getBySlug, slug, post.StatusPublished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, post.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %q: %w", slug, err)
	}
	return &p, nil
}

// ListNavPosts returns navigation records of published posts
func (s *Store) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	var nav []post.NavPost
	if err := s.db.SelectContext(ctx, &nav, s.listNav, post.StatusPublished, limit); err != nil {
		return nil, fmt.Errorf("failed to list navigation posts: %w", err)
	}
	if nav == nil {
		nav = []post.NavPost{}
	}
	return nav, nil
}

// Put inserts p or replaces the post with the same slug
func (s *Store) Put(ctx context.Context, p post.Post) error {
	if _, err := s.db.NamedExecContext(ctx, upsertQuery, p); err != nil {
		return fmt.Errorf("failed to save post %q: %w", p.Slug, err)
	}
	return nil
}
