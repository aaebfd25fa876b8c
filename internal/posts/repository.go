package posts

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d Draft, authorID uuid.UUID) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error)
	List(ctx context.Context, params ListParams) ([]*Post, error)
	Count(ctx context.Context, params ListParams) (int64, error)
	Update(ctx context.Context, id uuid.UUID, d Draft, authorID uuid.UUID) (*Revision, error)
	Delete(ctx context.Context, id uuid.UUID) (slug string, deleted bool, err error)
	PublishedSlugs(ctx context.Context) ([]string, error)
}
