package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/epropulse/epropulse/internal/models"
)

// AdminListPosts handles GET /api/admin/posts.
//
//	@Summary		List posts of every status
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(draft, published)
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	PostListAdminResponse
//	@Security		SessionAuth
//	@Router			/admin/posts [get]
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	posts, err := h.d.Catalog.ListAllPosts(r.Context(), models.PostStatus(q.Get("status")), limit, offset)
	if err != nil {
		writeError(w, r, "list posts", err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, PostListAdminResponse{Posts: posts, Total: len(posts)})
}

// AdminGetPost handles GET /api/admin/posts/{id}.
func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.d.Catalog.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePost handles POST /api/admin/posts.
//
//	@Summary		Create a post
//	@Description	The slug defaults to the slugified title and the status to draft.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PostRequest	true	"Post fields"
//	@Success		201		{object}	models.Post
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		SessionAuth
//	@Router			/admin/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "create post", err)
		return
	}
	var p models.Post
	req.apply(&p)
	if err := h.d.Catalog.SavePost(r.Context(), &p); err != nil {
		writeError(w, r, "create post", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePost handles PUT /api/admin/posts/{id}. The request replaces every
// editable field; the import source of the post is kept.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "update post", err)
		return
	}
	p, err := h.d.Catalog.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "update post", err)
		return
	}
	req.apply(p)
	if err := h.d.Catalog.SavePost(r.Context(), p); err != nil {
		writeError(w, r, "update post", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePost handles DELETE /api/admin/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Catalog.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateProduct handles POST /api/admin/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "create product", err)
		return
	}
	var p models.Product
	req.apply(&p)
	if err := h.d.Catalog.SaveProduct(r.Context(), &p); err != nil {
		writeError(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/admin/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "update product", err)
		return
	}
	p, err := h.d.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "update product", err)
		return
	}
	req.apply(p)
	if err := h.d.Catalog.SaveProduct(r.Context(), p); err != nil {
		writeError(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAuthor handles POST /api/admin/authors.
func (h *Handler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var a models.Author
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, "create author", err)
		return
	}
	a.ID = ""
	if err := h.d.Catalog.SaveAuthor(r.Context(), &a); err != nil {
		writeError(w, r, "create author", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// CreateCategory handles POST /api/admin/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, "create category", err)
		return
	}
	c.ID = ""
	if err := h.d.Catalog.SaveCategory(r.Context(), &c); err != nil {
		writeError(w, r, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListContactMessages handles GET /api/admin/contact-messages.
//
//	@Summary		List contact form messages, newest first
//	@Tags			admin
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	map[string][]models.ContactMessage
//	@Security		SessionAuth
//	@Router			/admin/contact-messages [get]
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	msgs, err := h.d.Messages.ListContactMessages(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "list contact messages", err)
		return
	}
	if msgs == nil {
		msgs = []models.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// AnalyzeSEO handles POST /api/admin/seo/analyze.
//
//	@Summary		Compute the statistics and grades of a document
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnalyzeRequest	true	"Document"
//	@Success		200		{object}	AnalyzeResponse
//	@Security		SessionAuth
//	@Router			/admin/seo/analyze [post]
func (h *Handler) AnalyzeSEO(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "analyze", err)
		return
	}
	st, rep := h.d.Catalog.Analyze(req.HTML, req.Text)
	writeJSON(w, http.StatusOK, AnalyzeResponse{Stats: st, Report: rep})
}
