// Package publish runs post mutations through authorization, validation and
// persistence, and reports which public routes went stale as a result.
package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/routes"
)

var ErrMissingID = errors.New("post id is required")

type Authorizer interface {
	Authorize(ctx context.Context, id *auth.Identity) (uuid.UUID, error)
}

type Store interface {
	CreatePost(ctx context.Context, d posts.Draft, authorID uuid.UUID) (*posts.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, d posts.Draft, authorID uuid.UUID) (*posts.Revision, error)
	DeletePost(ctx context.Context, id uuid.UUID) (slug string, deleted bool, err error)
}

// Result describes a completed mutation. The workflow never touches a cache;
// callers invalidate the listed routes themselves.
type Result struct {
	Slug       string
	Invalidate []routes.Route
	// Published is set when the write made a post newly public.
	Published bool
	Post      *posts.Post
}

type Workflow struct {
	gate   Authorizer
	store  Store
	logger *slog.Logger
}

func NewWorkflow(gate Authorizer, store Store, logger *slog.Logger) *Workflow {
	return &Workflow{gate: gate, store: store, logger: logger}
}

func staleRoutes(slugs ...string) []routes.Route {
	rs := []routes.Route{routes.Blog, routes.Sitemap, routes.Admin}
	for _, s := range slugs {
		rs = append(rs, routes.Post(s))
	}
	return rs
}

func (w *Workflow) CreatePost(ctx context.Context, caller *auth.Identity, in posts.FormInput) (*Result, error) {
	authorID, err := w.gate.Authorize(ctx, caller)
	if err != nil {
		return nil, err
	}
	draft, err := posts.ParseForm(in)
	if err != nil {
		return nil, err
	}
	post, err := w.store.CreatePost(ctx, draft, authorID)
	if err != nil {
		return nil, err
	}

	w.logger.Info("post created", "post_id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	return &Result{
		Slug:       post.Slug,
		Invalidate: staleRoutes(post.Slug),
		Published:  post.IsPublished,
		Post:       post,
	}, nil
}

func (w *Workflow) UpdatePost(ctx context.Context, caller *auth.Identity, id uuid.UUID, in posts.FormInput) (*Result, error) {
	authorID, err := w.gate.Authorize(ctx, caller)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, ErrMissingID
	}
	draft, err := posts.ParseForm(in)
	if err != nil {
		return nil, err
	}
	rev, err := w.store.UpdatePost(ctx, id, draft, authorID)
	if err != nil {
		return nil, err
	}

	slugs := []string{rev.Post.Slug}
	if rev.PreviousSlug != rev.Post.Slug {
		slugs = append(slugs, rev.PreviousSlug)
	}
	w.logger.Info("post updated", "post_id", id, "slug", rev.Post.Slug, "previous_slug", rev.PreviousSlug)
	return &Result{
		Slug:       rev.Post.Slug,
		Invalidate: staleRoutes(slugs...),
		Published:  rev.Post.IsPublished && !rev.WasPublished,
		Post:       rev.Post,
	}, nil
}

// DeletePost removes a post. A missing id yields a Result with nothing to invalidate.
func (w *Workflow) DeletePost(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*Result, error) {
	if _, err := w.gate.Authorize(ctx, caller); err != nil {
		return nil, err
	}
	slug, deleted, err := w.store.DeletePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return &Result{}, nil
	}

	w.logger.Info("post deleted", "post_id", id, "slug", slug)
	return &Result{Slug: slug, Invalidate: staleRoutes(slug)}, nil
}
