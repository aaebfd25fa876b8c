package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/events"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/publish"
	"github.com/jeremyjsx/creativelab/internal/routes"
)

const invalidateTimeout = 5 * time.Second

// RequireAdmin rejects callers the gate does not authorize.
func RequireAdmin(gate publish.Authorizer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.Authorize(r.Context(), auth.IdentityFrom(r.Context())); err != nil {
				writeServiceError(w, logger, "authorize", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// invalidate runs after a committed write. It is detached from the request so
// a client disconnect does not skip it, and its failures are only logged.
func invalidate(ctx context.Context, inv cache.Invalidator, logger *slog.Logger, rs []routes.Route) {
	if len(rs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := inv.Invalidate(ctx, rs); err != nil {
		logger.Warn("route invalidation failed", "routes", routes.Strings(rs), "error", err)
	}
}

type AdminPostsHandler struct {
	workflow    *publish.Workflow
	svc         *posts.Service
	pages       cache.Store
	invalidator cache.Invalidator
	publisher   events.Publisher
	siteURL     string
	logger      *slog.Logger
}

type AdminPostsDeps struct {
	Workflow    *publish.Workflow
	Posts       *posts.Service
	Pages       cache.Store
	Invalidator cache.Invalidator
	Publisher   events.Publisher
	SiteURL     string
	Logger      *slog.Logger
}

func NewAdminPostsHandler(deps AdminPostsDeps) *AdminPostsHandler {
	return &AdminPostsHandler{
		workflow:    deps.Workflow,
		svc:         deps.Posts,
		pages:       deps.Pages,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		siteURL:     deps.SiteURL,
		logger:      deps.Logger,
	}
}

func (h *AdminPostsHandler) afterWrite(ctx context.Context, res *publish.Result) {
	invalidate(ctx, h.invalidator, h.logger, res.Invalidate)
	if !res.Published || res.Post == nil {
		return
	}
	e := events.NewPostPublished(res.Post.ID, res.Post.Slug, res.Post.Title, res.Post.Excerpt, h.siteURL)
	if err := h.publisher.PublishPostPublished(context.WithoutCancel(ctx), e); err != nil {
		h.logger.Warn("publish post.published failed", "slug", res.Post.Slug, "error", err)
	}
}

func decodeForm(w http.ResponseWriter, r *http.Request) (posts.FormInput, bool) {
	var in posts.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return in, false
	}
	return in, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// List returns every post including drafts.
func (h *AdminPostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveCached(w, r, h.pages, h.logger, routes.Admin, "posts", "application/json", func(ctx context.Context) ([]byte, error) {
			all, err := h.svc.GetAllPosts(ctx)
			if err != nil {
				return nil, err
			}
			return jsonBody(map[string]any{"data": all})
		})
	}
}

func (h *AdminPostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		post, err := h.svc.GetPostByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, "get post", err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *AdminPostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeForm(w, r)
		if !ok {
			return
		}
		res, err := h.workflow.CreatePost(r.Context(), auth.IdentityFrom(r.Context()), in)
		if err != nil {
			writeServiceError(w, h.logger, "create post", err)
			return
		}
		h.afterWrite(r.Context(), res)
		writeJSON(w, http.StatusCreated, map[string]string{"slug": res.Slug})
	}
}

func (h *AdminPostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		in, ok := decodeForm(w, r)
		if !ok {
			return
		}
		res, err := h.workflow.UpdatePost(r.Context(), auth.IdentityFrom(r.Context()), id, in)
		if err != nil {
			writeServiceError(w, h.logger, "update post", err)
			return
		}
		h.afterWrite(r.Context(), res)
		writeJSON(w, http.StatusOK, map[string]string{"slug": res.Slug})
	}
}

func (h *AdminPostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		res, err := h.workflow.DeletePost(r.Context(), auth.IdentityFrom(r.Context()), id)
		if err != nil {
			writeServiceError(w, h.logger, "delete post", err)
			return
		}
		h.afterWrite(r.Context(), res)
		w.WriteHeader(http.StatusNoContent)
	}
}

func Slugify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"slug": posts.Slugify(r.URL.Query().Get("title"))})
	}
}
