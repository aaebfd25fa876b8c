package events

import (
	"context"

	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/routes"
)

type Publisher interface {
	PublishRoutesInvalidated(ctx context.Context, e RoutesInvalidated) error
	PublishPostPublished(ctx context.Context, e PostPublished) error
}

// Invalidator hands route invalidation to the workers through the broker.
type Invalidator struct {
	Publisher Publisher
}

var _ cache.Invalidator = Invalidator{}

func (i Invalidator) Invalidate(ctx context.Context, rs []routes.Route) error {
	if len(rs) == 0 {
		return nil
	}
	return i.Publisher.PublishRoutesInvalidated(ctx, NewRoutesInvalidated(rs))
}
