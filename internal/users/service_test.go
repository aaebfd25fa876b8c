package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvisioner struct {
	create  func(ctx context.Context, email, password, fullName string) (uuid.UUID, error)
	deleted []uuid.UUID
	delErr  error
}

func (m *mockProvisioner) CreateIdentity(ctx context.Context, email, password, fullName string) (uuid.UUID, error) {
	if m.create != nil {
		return m.create(ctx, email, password, fullName)
	}
	return uuid.New(), nil
}

func (m *mockProvisioner) DeleteIdentity(_ context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return m.delErr
}

type failingProfiles struct {
	*auth.MemoryProfiles
	err error
}

func (f failingProfiles) Upsert(context.Context, *auth.Profile) error { return f.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validCreate() CreateInput {
	return CreateInput{Email: " new@example.com ", Password: "secret1", FullName: " Ada Lovelace ", Role: "editor"}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	prov := &mockProvisioner{}
	var gotEmail string
	prov.create = func(_ context.Context, email, _, _ string) (uuid.UUID, error) {
		gotEmail = email
		return uuid.MustParse("0a8f6b8e-1c62-4d4e-9d5f-1fb2c6d1a001"), nil
	}
	profiles := auth.NewMemoryProfiles()
	svc := NewService(prov, profiles, nil, testLogger())

	p, err := svc.CreateUser(ctx, validCreate())
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", gotEmail)
	assert.Equal(t, auth.RoleEditor, p.Role)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "Ada Lovelace", *p.FullName)

	stored, err := profiles.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleEditor, stored.Role)
}

func TestCreateUser_Validation(t *testing.T) {
	prov := &mockProvisioner{create: func(context.Context, string, string, string) (uuid.UUID, error) {
		t.Fatal("provisioner must not be called for invalid input")
		return uuid.Nil, nil
	}}
	svc := NewService(prov, auth.NewMemoryProfiles(), nil, testLogger())

	_, err := svc.CreateUser(context.Background(), CreateInput{Email: "nope", Password: "123", Role: "user"})
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"email":     "Invalid email address",
		"password":  "Password must be at least 6 characters",
		"full_name": "Full name is required",
		"role":      "Role must be admin or editor",
	}, verr.Fields)
}

func TestCreateUser_ProviderRejects(t *testing.T) {
	rejected := &ProviderError{Status: 422, Message: "User already registered"}
	prov := &mockProvisioner{create: func(context.Context, string, string, string) (uuid.UUID, error) {
		return uuid.Nil, rejected
	}}
	profiles := auth.NewMemoryProfiles()
	svc := NewService(prov, profiles, nil, testLogger())

	_, err := svc.CreateUser(context.Background(), validCreate())
	assert.ErrorIs(t, err, rejected)
	all, _ := profiles.List(context.Background())
	assert.Empty(t, all)
}

func TestCreateUser_PartialFailure(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("profiles insert failed")

	t.Run("no compensator keeps the orphan", func(t *testing.T) {
		prov := &mockProvisioner{}
		svc := NewService(prov, failingProfiles{auth.NewMemoryProfiles(), dbErr}, nil, testLogger())

		_, err := svc.CreateUser(ctx, validCreate())
		var perr *PartialFailureError
		require.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, perr.Compensated)
		assert.NotEqual(t, uuid.Nil, perr.IdentityID)
		assert.Empty(t, prov.deleted)
		assert.Contains(t, err.Error(), "identity left in place")
	})

	t.Run("delete orphan compensator", func(t *testing.T) {
		prov := &mockProvisioner{}
		svc := NewService(prov, failingProfiles{auth.NewMemoryProfiles(), dbErr}, DeleteOrphan(prov), testLogger())

		_, err := svc.CreateUser(ctx, validCreate())
		var perr *PartialFailureError
		require.ErrorAs(t, err, &perr)
		assert.True(t, perr.Compensated)
		assert.Equal(t, []uuid.UUID{perr.IdentityID}, prov.deleted)
	})

	t.Run("compensation failure is reported", func(t *testing.T) {
		prov := &mockProvisioner{delErr: errors.New("provider down")}
		svc := NewService(prov, failingProfiles{auth.NewMemoryProfiles(), dbErr}, DeleteOrphan(prov), testLogger())

		_, err := svc.CreateUser(ctx, validCreate())
		var perr *PartialFailureError
		require.ErrorAs(t, err, &perr)
		assert.False(t, perr.Compensated)
		assert.EqualError(t, perr.CompensationErr, "provider down")
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	profiles := auth.NewMemoryProfiles(auth.Profile{ID: id, Role: auth.RoleUser})
	svc := NewService(&mockProvisioner{}, profiles, nil, testLogger())

	p, err := svc.UpdateRole(ctx, id, RoleInput{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, p.Role)

	_, err = svc.UpdateRole(ctx, id, RoleInput{Role: "owner"})
	var verr *validate.Error
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateRole(ctx, uuid.New(), RoleInput{Role: "editor"})
	assert.ErrorIs(t, err, auth.ErrProfileNotFound)
}
