package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
)

// seedFile is the layout of a seed document: a list of posts under "posts"
type seedFile struct {
	Posts []post.Post `yaml:"posts" toml:"posts"`
}

// NewFromGlob creates a store seeded from every file matching pattern.
// A pattern matching nothing yields an empty store.
func NewFromGlob(pattern string) (*Store, error) {
	posts, err := LoadGlob(pattern)
	if err != nil {
		return nil, err
	}
	return New(posts...)
}

// LoadGlob reads posts from every YAML or TOML file matching pattern, in
// lexical path order. A later file wins on duplicate slugs, and the result
// holds each slug once. Two slugs sharing an id fail with post.ErrDuplicateID.
func LoadGlob(pattern string) ([]post.Post, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid seed pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var posts []post.Post
	for _, path := range matches {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		posts = append(posts, loaded...)
	}
	return dedupe(posts)
}

// dedupe keeps the last post per slug, in first-seen order, and rejects ids
// claimed by more than one slug
func dedupe(posts []post.Post) ([]post.Post, error) {
	index := make(map[string]int, len(posts))
	out := make([]post.Post, 0, len(posts))
	for _, p := range posts {
		if i, ok := index[p.Slug]; ok {
			out[i] = p
			continue
		}
		index[p.Slug] = len(out)
		out = append(out, p)
	}

	owners := make(map[string]string, len(out))
	for _, p := range out {
		if owner, ok := owners[p.ID]; ok {
			return nil, fmt.Errorf("%w: %q used by %q and %q", post.ErrDuplicateID, p.ID, owner, p.Slug)
		}
		owners[p.ID] = p.Slug
	}
	return out, nil
}

// LoadFile reads posts from one seed file, chosen by extension
func LoadFile(path string) ([]post.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed %s: %w", path, err)
	}

	var seed seedFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seed)
	case ".toml":
		err = toml.Unmarshal(data, &seed)
	default:
		return nil, fmt.Errorf("unsupported seed format %q: %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed %s: %w", path, err)
	}

	for i := range seed.Posts {
		if err := normalize(&seed.Posts[i]); err != nil {
			return nil, fmt.Errorf("invalid post %d in %s: %w", i, path, err)
		}
	}
	return seed.Posts, nil
}

// normalize applies seed defaults: a missing status means published and a
// missing id falls back to the slug
func normalize(p *post.Post) error {
	if p.Slug == "" {
		return fmt.Errorf("post %q has no slug", p.Title)
	}
	if p.ID == "" {
		p.ID = p.Slug
	}
	if p.Status == "" {
		p.Status = post.StatusPublished
	}
	if !p.Status.Valid() {
		return fmt.Errorf("post %q has unknown status %q", p.Slug, p.Status)
	}
	return nil
}
