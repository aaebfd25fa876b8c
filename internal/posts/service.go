package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/db"
)

// Backend is either Configured with a live repository or Unconfigured.
type Backend interface {
	backend()
}

type Configured struct {
	Repo Repository
}

type Unconfigured struct{}

func (Configured) backend()   {}
func (Unconfigured) backend() {}

const defaultRelatedLimit = 3

type Service struct {
	backend Backend
	sample  *MemoryRepository
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	if backend == nil {
		backend = Unconfigured{}
	}
	return &Service{
		backend: backend,
		sample:  NewMemoryRepository(SamplePosts()...),
		logger:  logger,
	}
}

type fallbackKey struct{}

// TrackFallback returns a context that records whether any read made with it
// was answered from the sample dataset because the configured store failed.
// Responses built from such reads must not be cached.
func TrackFallback(ctx context.Context) (context.Context, func() bool) {
	var served atomic.Bool
	return context.WithValue(ctx, fallbackKey{}, &served), served.Load
}

func markFallback(ctx context.Context) {
	if served, ok := ctx.Value(fallbackKey{}).(*atomic.Bool); ok {
		served.Store(true)
	}
}

// read runs fn against the configured repository and degrades to the sample
// dataset when the store is unconfigured or fails. ErrNotFound is returned as is.
func read[T any](ctx context.Context, s *Service, op string, fn func(Repository) (T, error)) (T, error) {
	switch b := s.backend.(type) {
	case Configured:
		v, err := fn(b.Repo)
		if err == nil || errors.Is(err, ErrNotFound) {
			return v, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			var zero T
			return zero, ctxErr
		}
		s.logger.Error("read failed, serving sample posts", "op", op, "error", err)
		markFallback(ctx)
		return fn(s.sample)
	case Unconfigured:
		return fn(s.sample)
	default:
		panic(fmt.Sprintf("posts: unknown backend %T", b))
	}
}

func (s *Service) writer() (Repository, error) {
	switch b := s.backend.(type) {
	case Configured:
		return b.Repo, nil
	case Unconfigured:
		return nil, db.ErrUnavailable
	default:
		panic(fmt.Sprintf("posts: unknown backend %T", b))
	}
}

// GetPublishedPosts returns published posts, newest first. A limit <= 0 returns all.
func (s *Service) GetPublishedPosts(ctx context.Context, limit int) ([]*Post, error) {
	return read(ctx, s, "published posts", func(r Repository) ([]*Post, error) {
		return r.List(ctx, ListParams{Limit: limit, PublishedOnly: true})
	})
}

func (s *Service) GetPaginatedPosts(ctx context.Context, params ListParams) (*ListResult, error) {
	params.PublishedOnly = true
	params.ExcludeSlug = ""
	if params.Offset < 0 {
		params.Offset = 0
	}
	return read(ctx, s, "paginated posts", func(r Repository) (*ListResult, error) {
		posts, err := r.List(ctx, params)
		if err != nil {
			return nil, err
		}
		total, err := r.Count(ctx, params)
		if err != nil {
			return nil, err
		}
		return &ListResult{Posts: posts, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
	})
}

func (s *Service) GetPostBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error) {
	return read(ctx, s, "post by slug", func(r Repository) (*Post, error) {
		return r.GetBySlug(ctx, slug, includeDrafts)
	})
}

func (s *Service) GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return read(ctx, s, "post by id", func(r Repository) (*Post, error) {
		return r.GetByID(ctx, id)
	})
}

func (s *Service) GetRelatedPosts(ctx context.Context, slug string, limit int) ([]*Post, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	return read(ctx, s, "related posts", func(r Repository) ([]*Post, error) {
		return r.List(ctx, ListParams{Limit: limit, PublishedOnly: true, ExcludeSlug: slug})
	})
}

// GetAllPosts returns every post including drafts, for the admin listing.
func (s *Service) GetAllPosts(ctx context.Context) ([]*Post, error) {
	return read(ctx, s, "all posts", func(r Repository) ([]*Post, error) {
		return r.List(ctx, ListParams{})
	})
}

func (s *Service) GetPublishedSlugs(ctx context.Context) ([]string, error) {
	return read(ctx, s, "published slugs", func(r Repository) ([]string, error) {
		return r.PublishedSlugs(ctx)
	})
}

func (s *Service) CreatePost(ctx context.Context, d Draft, authorID uuid.UUID) (*Post, error) {
	repo, err := s.writer()
	if err != nil {
		return nil, err
	}
	post, err := repo.Create(ctx, d, authorID)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, d Draft, authorID uuid.UUID) (*Revision, error) {
	repo, err := s.writer()
	if err != nil {
		return nil, err
	}
	rev, err := repo.Update(ctx, id, d, authorID)
	if err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	return rev, nil
}

// DeletePost removes a post. Deleting a missing id is not an error; deleted reports
// whether a row was removed.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) (slug string, deleted bool, err error) {
	repo, err := s.writer()
	if err != nil {
		return "", false, err
	}
	slug, deleted, err = repo.Delete(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("delete post %s: %w", id, err)
	}
	return slug, deleted, nil
}
