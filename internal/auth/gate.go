package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin role required")
)

// Gate decides whether a caller may perform admin mutations.
type Gate struct {
	profiles       ProfileRepository
	bootstrapEmail string
	logger         *slog.Logger

	// ids whose bootstrap profile is known to exist
	reconciled sync.Map
}

// NewGate builds a Gate. An empty bootstrapEmail disables the bootstrap admin.
func NewGate(profiles ProfileRepository, bootstrapEmail string, logger *slog.Logger) *Gate {
	return &Gate{
		profiles:       profiles,
		bootstrapEmail: strings.ToLower(strings.TrimSpace(bootstrapEmail)),
		logger:         logger,
	}
}

func (g *Gate) isBootstrap(email string) bool {
	return g.bootstrapEmail != "" && strings.EqualFold(strings.TrimSpace(email), g.bootstrapEmail)
}

// Authorize returns the caller's id when it may act as an admin.
func (g *Gate) Authorize(ctx context.Context, id *Identity) (uuid.UUID, error) {
	if id == nil {
		return uuid.Nil, ErrUnauthenticated
	}

	if g.isBootstrap(id.Email) {
		if err := g.reconcileBootstrap(ctx, id); err != nil {
			return uuid.Nil, err
		}
		return id.ID, nil
	}

	p, err := g.profiles.GetByID(ctx, id.ID)
	if errors.Is(err, ErrProfileNotFound) {
		return uuid.Nil, ErrForbidden
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup profile: %w", err)
	}
	if p.Role != RoleAdmin {
		return uuid.Nil, ErrForbidden
	}
	return id.ID, nil
}

// reconcileBootstrap makes sure the bootstrap identity has a profile. An
// existing profile is left untouched whatever its role.
func (g *Gate) reconcileBootstrap(ctx context.Context, id *Identity) error {
	if _, ok := g.reconciled.Load(id.ID); ok {
		return nil
	}
	created, err := g.profiles.InsertIfAbsent(ctx, &Profile{ID: id.ID, Role: RoleAdmin})
	if err != nil {
		return fmt.Errorf("reconcile bootstrap admin: %w", err)
	}
	if created {
		g.logger.Info("bootstrap admin profile created", "profile_id", id.ID, "email", id.Email)
	}
	g.reconciled.Store(id.ID, struct{}{})
	return nil
}
