package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/contact"
	"github.com/jeremyjsx/creativelab/internal/events"
	"github.com/jeremyjsx/creativelab/internal/middleware"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/publish"
	"github.com/jeremyjsx/creativelab/internal/storage"
	"github.com/jeremyjsx/creativelab/internal/users"
)

type RouterDeps struct {
	Posts       *posts.Service
	Workflow    *publish.Workflow
	Gate        publish.Authorizer
	Users       *users.Service
	Contact     *contact.Service
	Storage     storage.Storage
	Pages       cache.Store
	Invalidator cache.Invalidator
	Publisher   events.Publisher
	Health      *HealthDeps

	JWTSecret      []byte
	SiteURL        string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires every route.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	postsHandler := NewPostsHandler(deps.Posts, deps.Pages, deps.Logger)
	adminPosts := NewAdminPostsHandler(AdminPostsDeps{
		Workflow:    deps.Workflow,
		Posts:       deps.Posts,
		Pages:       deps.Pages,
		Invalidator: deps.Invalidator,
		Publisher:   deps.Publisher,
		SiteURL:     deps.SiteURL,
		Logger:      deps.Logger,
	})
	usersHandler := NewUsersHandler(deps.Users, deps.Pages, deps.Invalidator, deps.Logger)

	r.Get("/health", Health(deps.Health))
	r.Get("/sitemap.xml", postsHandler.Sitemap(deps.SiteURL))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(120, time.Minute))
			r.Get("/slugs", postsHandler.Slugs())
			r.Get("/posts", postsHandler.List())
			r.Get("/posts/{slug}", postsHandler.GetBySlug())
			r.Get("/posts/{slug}/related", postsHandler.Related())
		})
		r.With(middleware.RateLimit(5, time.Minute)).Post("/contact", Contact(deps.Contact, deps.Logger))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Identity(deps.JWTSecret))

			// mutations authorize inside the publish workflow
			r.Post("/posts", adminPosts.Create())
			r.Put("/posts/{id}", adminPosts.Update())
			r.Delete("/posts/{id}", adminPosts.Delete())

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(deps.Gate, deps.Logger))
				r.Get("/posts", adminPosts.List())
				r.Get("/posts/{id}", adminPosts.Get())
				r.Get("/slugify", Slugify())
				r.Post("/uploads", UploadCover(deps.Storage, deps.Logger))
				r.Get("/users", usersHandler.List())
				r.Post("/users", usersHandler.Create())
				r.Patch("/users/{id}/role", usersHandler.UpdateRole())
			})
		})
	})

	return r
}
