package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/epropulse/epropulse/internal/contact"
	"github.com/epropulse/epropulse/internal/locale"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/ratelimit"
	"github.com/epropulse/epropulse/internal/search"
)

// unavailableNotice is shown to visitors when the content store is down.
const unavailableNotice = "Le contenu est momentanément indisponible."

// Handler holds API route handlers.
type Handler struct {
	d Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

// visitorCountry returns the country asked for in the query, else the one
// found in Accept-Language. ok is false when neither names a supported
// country.
func visitorCountry(r *http.Request) (code string, ok bool) {
	if c := strings.TrimSpace(r.URL.Query().Get("country")); c != "" && locale.Supported(c) {
		return strings.ToUpper(c), true
	}
	if c, found := locale.DetectFromAcceptLanguage(r.Header.Get("Accept-Language")); found && locale.Supported(c) {
		return c, true
	}
	return "", false
}

func searchQuery(r *http.Request) search.Query {
	q := r.URL.Query()
	return search.Query{Term: q.Get("q"), Category: q.Get("category")}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		Search published posts
//	@Tags			posts
//	@Produce		json
//	@Param			q			query		string	false	"Search term"
//	@Param			category	query		string	false	"Exact category"
//	@Param			tag			query		string	false	"Tag"
//	@Success		200			{object}	PostListResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.d.Catalog.SearchPosts(r.Context(), searchQuery(r), r.URL.Query().Get("tag"))
	resp := PostListResponse{PostList: list}
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		resp.Notice = unavailableNotice
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a published post with its SEO metadata
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	catalog.PostPage
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	page, err := h.d.Catalog.Post(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetPostMarkdown handles GET /api/posts/{slug}/markdown.
//
//	@Summary		Export a published post as Markdown
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	MarkdownResponse
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug}/markdown [get]
func (h *Handler) GetPostMarkdown(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	md, err := h.d.Catalog.PostMarkdown(r.Context(), slug)
	if err != nil {
		writeError(w, r, "export post", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkdownResponse{Slug: slug, Markdown: md})
}

// ListAuthors handles GET /api/authors.
func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.d.Catalog.Authors(r.Context())
	if err != nil {
		writeError(w, r, "list authors", err)
		return
	}
	if authors == nil {
		authors = []models.Author{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

// GetAuthor handles GET /api/authors/{slug}.
//
//	@Summary		Get an author and their published posts
//	@Tags			authors
//	@Produce		json
//	@Param			slug	path		string	true	"Author slug"
//	@Success		200		{object}	catalog.AuthorPage
//	@Failure		404		{object}	errResponse
//	@Router			/authors/{slug} [get]
func (h *Handler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	page, err := h.d.Catalog.Author(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "get author", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	kind := models.CategoryKind(r.URL.Query().Get("kind"))
	cats, err := h.d.Catalog.Categories(r.Context(), kind)
	if err != nil {
		writeError(w, r, "list categories", err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.d.Catalog.Tags(r.Context())
	if err != nil {
		writeError(w, r, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// ListProducts handles GET /api/products.
//
//	@Summary		Search the shop
//	@Description	Prices are formatted in each product's currency; the
//	@Description	visitor's locale comes from ?country= or Accept-Language.
//	@Tags			products
//	@Produce		json
//	@Param			q			query		string	false	"Search term"
//	@Param			category	query		string	false	"Exact category"
//	@Param			country		query		string	false	"ISO 3166 country code"
//	@Success		200			{object}	ProductListResponse
//	@Router			/products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	country, _ := visitorCountry(r)
	list, err := h.d.Catalog.SearchProducts(r.Context(), searchQuery(r), country)
	resp := ProductListResponse{ProductList: list}
	if err != nil {
		slog.Error("list products failed", slog.String("error", err.Error()))
		resp.Notice = unavailableNotice
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/products/{slug}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	country, _ := visitorCountry(r)
	p, err := h.d.Catalog.Product(r.Context(), chi.URLParam(r, "slug"), country)
	if err != nil {
		writeError(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Suggestions handles GET /api/search/suggestions.
//
//	@Summary		Complete a search term
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Partial search term"
//	@Success		200	{object}	SuggestionsResponse
//	@Router			/search/suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions: h.d.Catalog.Suggest(r.Context(), r.URL.Query().Get("q")),
	})
}

// Locale handles GET /api/locale.
//
//	@Summary		Resolve the visitor's country, currency and phone prefix
//	@Tags			locale
//	@Produce		json
//	@Param			country	query		string	false	"ISO 3166 country code"
//	@Success		200		{object}	LocaleResponse
//	@Router			/locale [get]
func (h *Handler) Locale(w http.ResponseWriter, r *http.Request) {
	code, ok := visitorCountry(r)
	info := locale.Resolve(code)
	writeJSON(w, http.StatusOK, LocaleResponse{
		Info:     info,
		Flag:     locale.FlagEmoji(info.CountryCode),
		Detected: ok,
	})
}

// Countries handles GET /api/countries.
func (h *Handler) Countries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"countries": locale.Countries()})
}

// Contact handles POST /api/contact.
//
//	@Summary		Leave a message through the contact form
//	@Description	Submissions screened as spam get the same answer as
//	@Description	accepted ones.
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			body	body		contact.Submission	true	"Form fields"
//	@Success		202		{object}	ContactResponse
//	@Failure		400		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Router			/contact [post]
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, r, "contact", err)
		return
	}
	if _, err := h.d.Contact.Submit(r.Context(), sub, ratelimit.ClientIP(r)); err != nil {
		writeError(w, r, "contact", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ContactResponse{Status: "received"})
}
