package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/auth"
	"github.com/epropulse/epropulse/internal/editor"
)

// session returns the editor session named in the URL if the signed-in
// user owns it. It writes the error response itself.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, err := h.d.Editor.Get(chi.URLParam(r, "id"), ownerID(r))
	if err != nil {
		writeError(w, r, "get editor session", err)
		return nil, false
	}
	return sess, true
}

func ownerID(r *http.Request) string {
	if u := auth.UserFrom(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

// view snapshots a session. Stats are recomputed from the current document
// so the response never lags behind the debounced analysis.
func (h *Handler) view(sess *editor.Session) SessionView {
	s := sess.Surface
	html := s.HTML()
	st, rep := h.d.Catalog.Analyze(html, s.Text())
	return SessionView{
		ID:        sess.ID,
		PostID:    sess.PostID,
		State:     s.State(),
		HTML:      html,
		Selection: s.Selection(),
		Stats:     st,
		Report:    rep,
		Modal:     s.Modal(),
		Toolbar:   s.Toolbar(),
		Notice:    sess.Notice(),
	}
}

// OpenSession handles POST /api/admin/editor/sessions.
//
//	@Summary		Open an editor session
//	@Description	With post_id the session edits that post and saves each
//	@Description	change to it; without, it edits an unsaved draft.
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenSessionRequest	false	"Session target"
//	@Success		201		{object}	SessionView
//	@Failure		404		{object}	errResponse
//	@Security		SessionAuth
//	@Router			/admin/editor/sessions [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, "open editor session", err)
			return
		}
	}

	content := req.Content
	if req.PostID != "" {
		p, err := h.d.Catalog.GetPost(r.Context(), req.PostID)
		if err != nil {
			writeError(w, r, "open editor session", err)
			return
		}
		content = p.Content
	}

	sess, err := h.d.Editor.Open(ownerID(r), req.PostID, content)
	if err != nil {
		writeError(w, r, "open editor session", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(sess))
}

// GetSession handles GET /api/admin/editor/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

// CloseSession handles DELETE /api/admin/editor/sessions/{id}. Pending
// changes are saved before the session goes away.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Editor.Close(chi.URLParam(r, "id"), ownerID(r)); err != nil {
		writeError(w, r, "close editor session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InvokeCommand handles POST /api/admin/editor/sessions/{id}/commands.
//
//	@Summary		Run a toolbar button or editing command
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session id"
//	@Param			body	body		CommandRequest	true	"Command"
//	@Success		200		{object}	SessionView
//	@Failure		400		{object}	errResponse
//	@Security		SessionAuth
//	@Router			/admin/editor/sessions/{id}/commands [post]
func (h *Handler) InvokeCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CommandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "editor command", err)
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("command is required"))
		return
	}
	if err := sess.Surface.Invoke(req.Command, req.Args); err != nil {
		writeError(w, r, "editor command", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

// OpenModal handles POST /api/admin/editor/sessions/{id}/modal.
func (h *Handler) OpenModal(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ModalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "open modal", err)
		return
	}
	opened, err := sess.Surface.OpenModal(req.Kind)
	if err != nil {
		writeError(w, r, "open modal", err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Applied: opened, Session: h.view(sess)})
}

// FillModal handles PUT /api/admin/editor/sessions/{id}/modal.
func (h *Handler) FillModal(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ModalFieldsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "fill modal", err)
		return
	}
	if !sess.Surface.SetModalFields(req.Fields) {
		writeError(w, r, "fill modal", apperr.ErrConflict)
		return
	}
	writeJSON(w, http.StatusOK, h.view(sess))
}

// ConfirmModal handles POST /api/admin/editor/sessions/{id}/modal/confirm.
// An invalid payload is not an error: applied is false and the dialog stays
// open.
func (h *Handler) ConfirmModal(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	applied := sess.Surface.Confirm()
	writeJSON(w, http.StatusOK, ActionResponse{Applied: applied, Session: h.view(sess)})
}

// CancelModal handles POST /api/admin/editor/sessions/{id}/modal/cancel.
func (h *Handler) CancelModal(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Surface.Cancel()
	writeJSON(w, http.StatusOK, h.view(sess))
}

// HandleKey handles POST /api/admin/editor/sessions/{id}/keys.
func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req KeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "editor key", err)
		return
	}
	handled, err := sess.Surface.HandleKey(req.Key)
	if err != nil {
		writeError(w, r, "editor key", err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Applied: handled, Session: h.view(sess)})
}
