package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/routes"
	"github.com/jeremyjsx/creativelab/internal/users"
)

type UsersHandler struct {
	svc         *users.Service
	pages       cache.Store
	invalidator cache.Invalidator
	logger      *slog.Logger
}

func NewUsersHandler(svc *users.Service, pages cache.Store, inv cache.Invalidator, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, pages: pages, invalidator: inv, logger: logger}
}

func (h *UsersHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveCached(w, r, h.pages, h.logger, routes.AdminUsers, "profiles", "application/json", func(ctx context.Context) ([]byte, error) {
			profiles, err := h.svc.ListProfiles(ctx)
			if err != nil {
				return nil, err
			}
			return jsonBody(map[string]any{"data": profiles})
		})
	}
}

func (h *UsersHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in users.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		profile, err := h.svc.CreateUser(r.Context(), in)
		if err != nil {
			writeServiceError(w, h.logger, "create user", err)
			return
		}
		invalidate(r.Context(), h.invalidator, h.logger, []routes.Route{routes.AdminUsers})
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "User created successfully",
			"profile": profile,
		})
	}
}

func (h *UsersHandler) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var in users.RoleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		profile, err := h.svc.UpdateRole(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, h.logger, "update role", err)
			return
		}
		invalidate(r.Context(), h.invalidator, h.logger, []routes.Route{routes.AdminUsers})
		writeJSON(w, http.StatusOK, profile)
	}
}
