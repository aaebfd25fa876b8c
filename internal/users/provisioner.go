package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/db"
	gotrue "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
)

// Provisioner issues and revokes login identities at the hosted auth provider.
type Provisioner interface {
	CreateIdentity(ctx context.Context, email, password, fullName string) (uuid.UUID, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// ProviderError is a rejection reported by the auth provider, such as an
// email that is already registered.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %s (status %d)", e.Message, e.Status)
}

// UnconfiguredProvisioner is used when no provider credentials are set.
type UnconfiguredProvisioner struct{}

func (UnconfiguredProvisioner) CreateIdentity(context.Context, string, string, string) (uuid.UUID, error) {
	return uuid.Nil, fmt.Errorf("identity provider: %w", db.ErrUnavailable)
}

func (UnconfiguredProvisioner) DeleteIdentity(context.Context, uuid.UUID) error {
	return fmt.Errorf("identity provider: %w", db.ErrUnavailable)
}

// SupabaseProvisioner talks to the Supabase auth admin API with the service
// role key.
type SupabaseProvisioner struct {
	client  gotrue.Client
	timeout time.Duration
}

func NewSupabaseProvisioner(baseURL, serviceKey string) *SupabaseProvisioner {
	client := gotrue.New("", serviceKey).
		WithCustomAuthURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		WithToken(serviceKey)
	return &SupabaseProvisioner{client: client, timeout: 10 * time.Second}
}

func (p *SupabaseProvisioner) CreateIdentity(ctx context.Context, email, password, fullName string) (uuid.UUID, error) {
	var created *types.AdminCreateUserResponse
	err := p.call(ctx, "create identity", func(c gotrue.Client) error {
		var err error
		created, err = c.AdminCreateUser(types.AdminCreateUserRequest{
			Email:        email,
			Password:     &password,
			EmailConfirm: true,
			UserMetadata: map[string]interface{}{"full_name": fullName},
		})
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	if created == nil || created.ID == uuid.Nil {
		return uuid.Nil, errors.New("auth provider returned no user id")
	}
	return created.ID, nil
}

func (p *SupabaseProvisioner) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	return p.call(ctx, "delete identity", func(c gotrue.Client) error {
		return c.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id})
	})
}

// call runs fn on a client bound to ctx. A non-2xx answer from the provider
// is returned as a *ProviderError.
func (p *SupabaseProvisioner) call(ctx context.Context, op string, fn func(gotrue.Client) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	rec := &rejectionRecorder{ctx: ctx, next: http.DefaultTransport}
	err := fn(p.client.WithClient(http.Client{Transport: rec}))
	if rec.rejection != nil {
		return rec.rejection
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// rejectionRecorder attaches the caller's context to outgoing requests and
// keeps the provider's error payload, which the client library only reports
// as text.
type rejectionRecorder struct {
	ctx       context.Context
	next      http.RoundTripper
	rejection *ProviderError
}

func (t *rejectionRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}
	payload, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	t.rejection = &ProviderError{Status: resp.StatusCode, Message: providerMessage(payload)}
	resp.Body = io.NopCloser(bytes.NewReader(payload))
	return resp, nil
}

func providerMessage(payload []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(payload, &e); err == nil {
		for _, m := range []string{e.Msg, e.Message, e.ErrorDescription} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(payload))
}
