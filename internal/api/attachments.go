package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the media size limit for the
// multipart framing.
const multipartOverhead = 1 << 20

// ListMedia handles GET /api/admin/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	assets, err := h.d.Media.List()
	if err != nil {
		writeError(w, r, "list media", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"media": assets})
}

// UploadMedia handles POST /api/admin/media (multipart/form-data, field "file").
//
//	@Summary		Upload an image for the editor
//	@Description	Only PNG, JPEG, GIF and WebP are accepted. The stored name
//	@Description	is generated; the client file name is ignored.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	media.Asset
//	@Failure		400		{object}	errResponse
//	@Security		SessionAuth
//	@Router			/admin/media [post]
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	limit := h.d.Media.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	asset, err := h.d.Media.Save(file)
	if err != nil {
		writeError(w, r, "upload media", err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// ImportMedia handles POST /api/admin/media/import. The source is a data URI
// or a public http(s) URL.
func (h *Handler) ImportMedia(w http.ResponseWriter, r *http.Request) {
	var req MediaImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "import media", err)
		return
	}
	asset, err := h.d.Media.Import(r.Context(), req.Source)
	if err != nil {
		writeError(w, r, "import media", err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// DeleteMedia handles DELETE /api/admin/media/{name}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Media.Delete(chi.URLParam(r, "name")); err != nil {
		writeError(w, r, "delete media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
