package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/epropulse/epropulse/internal/auth"
	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/contact"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/ratelimit"
	"github.com/epropulse/epropulse/internal/store"
)

// Deps are the services behind the API. Media, Events and LoginLimiter are
// optional; their routes are not mounted when nil.
type Deps struct {
	Catalog  *catalog.Service
	Contact  *contact.Service
	Auth     *auth.Provider
	Messages store.Store
	Editor   *editor.Manager
	Media    *media.Library
	Events   http.Handler

	LoginLimiter *ratelimit.KeyedRateLimiter
	SessionTTL   time.Duration
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d)
	r := chi.NewRouter()

	// Public site.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/markdown", h.GetPostMarkdown)
	r.Get("/authors", h.ListAuthors)
	r.Get("/authors/{slug}", h.GetAuthor)
	r.Get("/categories", h.ListCategories)
	r.Get("/tags", h.ListTags)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{slug}", h.GetProduct)
	r.Get("/search/suggestions", h.Suggestions)
	r.Get("/locale", h.Locale)
	r.Get("/countries", h.Countries)
	r.Post("/contact", h.Contact)

	// Sessions.
	r.Route("/auth", func(r chi.Router) {
		if d.LoginLimiter != nil {
			r.With(ratelimit.Middleware(d.LoginLimiter)).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	// Back office.
	r.Route("/admin", func(r chi.Router) {
		r.Use(d.Auth.RequireAdmin, noStore)

		r.Get("/posts", h.AdminListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/{id}", h.AdminGetPost)
		r.Put("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Post("/authors", h.CreateAuthor)
		r.Post("/categories", h.CreateCategory)
		r.Get("/contact-messages", h.ListContactMessages)
		r.Post("/seo/analyze", h.AnalyzeSEO)

		r.Route("/editor/sessions", func(r chi.Router) {
			r.Post("/", h.OpenSession)
			r.Get("/{id}", h.GetSession)
			r.Delete("/{id}", h.CloseSession)
			r.Post("/{id}/commands", h.InvokeCommand)
			r.Post("/{id}/modal", h.OpenModal)
			r.Put("/{id}/modal", h.FillModal)
			r.Post("/{id}/modal/confirm", h.ConfirmModal)
			r.Post("/{id}/modal/cancel", h.CancelModal)
			r.Post("/{id}/keys", h.HandleKey)
		})

		if d.Media != nil {
			r.Get("/media", h.ListMedia)
			r.Post("/media", h.UploadMedia)
			r.Post("/media/import", h.ImportMedia)
			r.Delete("/media/{name}", h.DeleteMedia)
		}

		// SSE endpoint (protected by the same admin check).
		if d.Events != nil {
			r.Get("/events", d.Events.ServeHTTP)
		}
	})

	return r
}
