package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/validate"
)

var inputValidator = validate.New()

// CreateInput is the admin "new user" form.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	FullName string `json:"full_name" validate:"min=1"`
	Role     string `json:"role" validate:"oneof=admin editor"`
}

var inputMessages = map[string]string{
	"email.required": "Invalid email address",
	"email.email":    "Invalid email address",
	"password.min":   "Password must be at least 6 characters",
	"full_name.min":  "Full name is required",
	"role.oneof":     "Role must be admin or editor",
}

type RoleInput struct {
	Role string `json:"role" validate:"oneof=admin editor user"`
}

var roleMessages = map[string]string{
	"role.oneof": "Role must be admin, editor or user",
}

// PartialFailureError reports an identity that was issued while its profile
// could not be written.
type PartialFailureError struct {
	IdentityID      uuid.UUID
	Cause           error
	Compensated     bool
	CompensationErr error
}

func (e *PartialFailureError) Error() string {
	msg := fmt.Sprintf("user %s created but failed to create profile: %v", e.IdentityID, e.Cause)
	switch {
	case e.Compensated:
		msg += "; identity removed"
	case e.CompensationErr != nil:
		msg += fmt.Sprintf("; removing identity failed: %v", e.CompensationErr)
	default:
		msg += "; identity left in place"
	}
	return msg
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }

// Compensator undoes an issued identity after its profile write failed.
type Compensator interface {
	Compensate(ctx context.Context, identityID uuid.UUID, cause error) error
}

type CompensatorFunc func(ctx context.Context, identityID uuid.UUID, cause error) error

func (f CompensatorFunc) Compensate(ctx context.Context, identityID uuid.UUID, cause error) error {
	return f(ctx, identityID, cause)
}

// DeleteOrphan removes the orphaned identity from the provider.
func DeleteOrphan(p Provisioner) Compensator {
	return CompensatorFunc(func(ctx context.Context, identityID uuid.UUID, _ error) error {
		return p.DeleteIdentity(ctx, identityID)
	})
}

type Service struct {
	provisioner Provisioner
	profiles    auth.ProfileRepository
	compensator Compensator
	logger      *slog.Logger
}

// NewService builds the user service. compensator may be nil, in which case
// orphaned identities are reported and kept.
func NewService(p Provisioner, profiles auth.ProfileRepository, compensator Compensator, logger *slog.Logger) *Service {
	return &Service{
		provisioner: p,
		profiles:    profiles,
		compensator: compensator,
		logger:      logger,
	}
}

// CreateUser issues an identity at the auth provider and then writes its
// profile. The two steps are not atomic; a failed second step yields a
// *PartialFailureError.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (*auth.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validate.Struct(inputValidator, in, inputMessages); err != nil {
		return nil, err
	}

	id, err := s.provisioner.CreateIdentity(ctx, in.Email, in.Password, in.FullName)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	fullName := in.FullName
	profile := &auth.Profile{ID: id, FullName: &fullName, Role: auth.Role(in.Role)}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, s.compensate(ctx, id, err)
	}

	s.logger.Info("user created", "user_id", id, "role", in.Role)
	return profile, nil
}

func (s *Service) compensate(ctx context.Context, id uuid.UUID, cause error) error {
	perr := &PartialFailureError{IdentityID: id, Cause: cause}
	if s.compensator != nil {
		if err := s.compensator.Compensate(ctx, id, cause); err != nil {
			perr.CompensationErr = err
		} else {
			perr.Compensated = true
		}
	}
	s.logger.Error("user profile write failed",
		"user_id", id,
		"error", cause,
		"compensated", perr.Compensated,
		"compensation_error", perr.CompensationErr,
	)
	return perr
}

func (s *Service) ListProfiles(ctx context.Context) ([]*auth.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, in RoleInput) (*auth.Profile, error) {
	if err := validate.Struct(inputValidator, in, roleMessages); err != nil {
		return nil, err
	}
	p, err := s.profiles.UpdateRole(ctx, id, auth.Role(in.Role))
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.logger.Info("role updated", "user_id", id, "role", in.Role)
	return p, nil
}
