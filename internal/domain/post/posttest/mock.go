// Package posttest provides test doubles for the Content Store.
package posttest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
)

// MockStore is a mock implementation of post.Store for testing.
type MockStore struct {
	mock.Mock
}

var _ post.Store = (*MockStore)(nil)

// ListPublished mocks the ListPublished method.
func (m *MockStore) ListPublished(ctx context.Context, limit int) ([]post.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]post.Post), args.Error(1)
}

// GetBySlug mocks the GetBySlug method.
func (m *MockStore) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*post.Post), args.Error(1)
}

// ListNavPosts mocks the ListNavPosts method.
func (m *MockStore) ListNavPosts(ctx context.Context, limit int) ([]post.NavPost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]post.NavPost), args.Error(1)
}

// Published builds a published post with the given fragments; empty strings stay nil.
func Published(id, slug string, order int, htmlExcerpt, jsExcerpt, htmlContent, jsContent string) post.Post {
	return post.Post{
		ID:          id,
		Title:       "Post " + id,
		Slug:        slug,
		HTMLExcerpt: optional(htmlExcerpt),
		JSExcerpt:   optional(jsExcerpt),
		HTMLContent: optional(htmlContent),
		JSContent:   optional(jsContent),
		Status:      post.StatusPublished,
		OrderIndex:  order,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return post.Ptr(s)
}
