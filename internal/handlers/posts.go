package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/routes"
)

const (
	defaultPerPage = 6
	maxPerPage     = 50
	maxPage        = 10000
	maxRelated     = 12
)

type PostsHandler struct {
	svc    *posts.Service
	cache  cache.Store
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, pages cache.Store, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		cache:  pages,
		logger: logger,
	}
}

type postResponse struct {
	*posts.Post
	CoverURL       string `json:"cover_url"`
	ReadingMinutes int    `json:"reading_minutes"`
}

func newPostResponse(p *posts.Post) postResponse {
	return postResponse{Post: p, CoverURL: p.Cover(), ReadingMinutes: posts.ReadingMinutes(p.Content)}
}

func newPostResponses(ps []*posts.Post) []postResponse {
	out := make([]postResponse, len(ps))
	for i, p := range ps {
		out[i] = newPostResponse(p)
	}
	return out
}

type listResponse struct {
	Data       []postResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

// serveCached answers from the page cache when possible and fills it on a miss.
// Cache errors never fail the request. Renders that fell back to sample posts
// are served but not stored.
func (h *PostsHandler) serveCached(w http.ResponseWriter, r *http.Request, route routes.Route, variant, contentType string, render func(ctx context.Context) ([]byte, error)) {
	serveCached(w, r, h.cache, h.logger, route, variant, contentType, render)
}

func serveCached(w http.ResponseWriter, r *http.Request, pages cache.Store, logger *slog.Logger, route routes.Route, variant, contentType string, render func(ctx context.Context) ([]byte, error)) {
	ctx := r.Context()
	body, ok, err := pages.Get(ctx, route, variant)
	if err != nil {
		logger.Warn("page cache read failed", "route", route, "error", err)
	}
	if ok {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(body)
		return
	}

	renderCtx, servedFallback := posts.TrackFallback(ctx)
	body, err = render(renderCtx)
	if err != nil {
		writeServiceError(w, logger, "render "+string(route), err)
		return
	}
	// sample data stands in for a failing store; never cache it
	if !servedFallback() {
		if err := pages.Set(ctx, route, variant, body); err != nil {
			logger.Warn("page cache write failed", "route", route, "error", err)
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(body)
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 1)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		if page > maxPage {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("page must be at most %d", maxPage), nil)
			return
		}
		perPage, err := queryInt(r, "per_page", defaultPerPage)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		perPage = min(perPage, maxPerPage)
		search := strings.TrimSpace(r.URL.Query().Get("search"))
		tag := strings.TrimSpace(r.URL.Query().Get("tag"))

		variant := fmt.Sprintf("list:page=%d&per_page=%d&search=%s&tag=%s", page, perPage, search, tag)
		h.serveCached(w, r, routes.Blog, variant, "application/json", func(ctx context.Context) ([]byte, error) {
			res, err := h.svc.GetPaginatedPosts(ctx, posts.ListParams{
				Limit:  perPage,
				Offset: (page - 1) * perPage,
				Search: search,
				Tag:    tag,
			})
			if err != nil {
				return nil, err
			}
			return jsonBody(listResponse{
				Data:       newPostResponses(res.Posts),
				Total:      res.Total,
				Page:       page,
				PerPage:    perPage,
				TotalPages: int((res.Total + int64(perPage) - 1) / int64(perPage)),
			})
		})
	}
}

func (h *PostsHandler) GetBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
			return
		}

		h.serveCached(w, r, routes.Post(slug), "detail", "application/json", func(ctx context.Context) ([]byte, error) {
			post, err := h.svc.GetPostBySlug(ctx, slug, false)
			if err != nil {
				return nil, err
			}
			return jsonBody(newPostResponse(post))
		})
	}
}

// Related lists other recent posts. It is cached under the listing route since
// any published change can alter it.
func (h *PostsHandler) Related() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		limit, err := queryInt(r, "limit", 3)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		limit = min(limit, maxRelated)

		variant := fmt.Sprintf("related:%s:%d", slug, limit)
		h.serveCached(w, r, routes.Blog, variant, "application/json", func(ctx context.Context) ([]byte, error) {
			related, err := h.svc.GetRelatedPosts(ctx, slug, limit)
			if err != nil {
				return nil, err
			}
			return jsonBody(map[string]any{"data": newPostResponses(related)})
		})
	}
}

// Slugs lists every published slug, for static path generation.
func (h *PostsHandler) Slugs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveCached(w, r, routes.Blog, "slugs", "application/json", func(ctx context.Context) ([]byte, error) {
			slugs, err := h.svc.GetPublishedSlugs(ctx)
			if err != nil {
				return nil, err
			}
			return jsonBody(map[string]any{"data": slugs})
		})
	}
}
