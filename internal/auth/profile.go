package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/db"
)

var ErrProfileNotFound = errors.New("profile not found")

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      Role      `json:"role"`
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// InsertIfAbsent creates p unless a profile with the same id exists.
	// created reports whether this call inserted the row.
	InsertIfAbsent(ctx context.Context, p *Profile) (created bool, err error)
	Upsert(ctx context.Context, p *Profile) error
	List(ctx context.Context) ([]*Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) (*Profile, error)
}

// Unavailable stands in for the profile store when no backend is configured.
type Unavailable struct{}

var _ ProfileRepository = Unavailable{}

func (Unavailable) GetByID(context.Context, uuid.UUID) (*Profile, error) {
	return nil, db.ErrUnavailable
}

func (Unavailable) InsertIfAbsent(context.Context, *Profile) (bool, error) {
	return false, db.ErrUnavailable
}

func (Unavailable) Upsert(context.Context, *Profile) error { return db.ErrUnavailable }

func (Unavailable) List(context.Context) ([]*Profile, error) { return nil, db.ErrUnavailable }

func (Unavailable) UpdateRole(context.Context, uuid.UUID, Role) (*Profile, error) {
	return nil, db.ErrUnavailable
}
