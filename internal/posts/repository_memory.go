package posts

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps posts in process memory. It backs the built-in
// sample dataset and the memory store driver.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts []*Post
	now   func() time.Time
}

func NewMemoryRepository(seed ...*Post) *MemoryRepository {
	r := &MemoryRepository{now: time.Now}
	for _, p := range seed {
		r.posts = append(r.posts, clonePost(p))
	}
	return r
}

func clonePost(p *Post) *Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if p.CoverImageURL != nil {
		cover := *p.CoverImageURL
		c.CoverImageURL = &cover
	}
	if p.AuthorID != nil {
		author := *p.AuthorID
		c.AuthorID = &author
	}
	return &c
}

func (r *MemoryRepository) indexByID(id uuid.UUID) int {
	return slices.IndexFunc(r.posts, func(p *Post) bool { return p.ID == id })
}

func (r *MemoryRepository) slugTaken(slug string, except uuid.UUID) bool {
	return slices.ContainsFunc(r.posts, func(p *Post) bool { return p.Slug == slug && p.ID != except })
}

func (r *MemoryRepository) Create(_ context.Context, d Draft, authorID uuid.UUID) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(d.Slug, uuid.Nil) {
		return nil, ErrSlugExists
	}
	now := r.now()
	author := authorID
	p := &Post{ID: uuid.New(), AuthorID: &author, CreatedAt: now, UpdatedAt: now}
	applyDraft(p, d)
	r.posts = append(r.posts, p)
	return clonePost(p), nil
}

func applyDraft(p *Post, d Draft) {
	p.Title = d.Title
	p.Slug = d.Slug
	p.Excerpt = d.Excerpt
	p.Content = d.Content
	p.CoverImageURL = d.CoverImageURL
	p.Tags = slices.Clone(d.Tags)
	p.IsPublished = d.IsPublished
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return clonePost(r.posts[i]), nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string, includeDrafts bool) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug && (includeDrafts || p.IsPublished) {
			return clonePost(p), nil
		}
	}
	return nil, ErrNotFound
}

func matches(p *Post, params ListParams) bool {
	if params.PublishedOnly && !p.IsPublished {
		return false
	}
	if params.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(params.Search)) {
		return false
	}
	if params.Tag != "" && !slices.Contains(p.Tags, params.Tag) {
		return false
	}
	if params.ExcludeSlug != "" && p.Slug == params.ExcludeSlug {
		return false
	}
	return true
}

func (r *MemoryRepository) filtered(params ListParams) []*Post {
	out := make([]*Post, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(p, params) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryRepository) List(_ context.Context, params ListParams) ([]*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.filtered(params)
	start := min(max(params.Offset, 0), len(all))
	end := len(all)
	if params.Limit > 0 {
		end = min(start+params.Limit, len(all))
	}
	out := make([]*Post, 0, end-start)
	for _, p := range all[start:end] {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context, params ListParams) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.filtered(params))), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, d Draft, authorID uuid.UUID) (*Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if r.slugTaken(d.Slug, id) {
		return nil, ErrSlugExists
	}
	p := r.posts[i]
	rev := &Revision{PreviousSlug: p.Slug, WasPublished: p.IsPublished}
	applyDraft(p, d)
	author := authorID
	p.AuthorID = &author
	p.UpdatedAt = r.now()
	rev.Post = clonePost(p)
	return rev, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return "", false, nil
	}
	slug := r.posts[i].Slug
	r.posts = slices.Delete(r.posts, i, i+1)
	return slug, true, nil
}

func (r *MemoryRepository) PublishedSlugs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.filtered(ListParams{PublishedOnly: true})
	slugs := make([]string, len(all))
	for i, p := range all {
		slugs[i] = p.Slug
	}
	return slugs, nil
}
