package cache

import (
	"context"

	"github.com/jeremyjsx/creativelab/internal/routes"
)

// Invalidator marks rendered routes stale so the next read regenerates them.
type Invalidator interface {
	Invalidate(ctx context.Context, rs []routes.Route) error
}

// Store holds rendered responses per logical route. A route may have many
// variants (query strings, related post lists) which are dropped together.
type Store interface {
	Invalidator
	Get(ctx context.Context, route routes.Route, variant string) ([]byte, bool, error)
	Set(ctx context.Context, route routes.Route, variant string, body []byte) error
}

type Noop struct{}

var _ Store = Noop{}

func (Noop) Invalidate(context.Context, []routes.Route) error { return nil }

func (Noop) Get(context.Context, routes.Route, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, routes.Route, string, []byte) error { return nil }
