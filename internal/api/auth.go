package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/epropulse/epropulse/internal/auth"
)

// Login handles POST /api/auth/login.
//
//	@Summary		Sign in to the back office
//	@Description	Sets the session cookie and returns the token for API clients.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "login", err)
		return
	}
	if !h.d.Auth.Enabled() {
		h.Me(w, r)
		return
	}
	token, u, err := h.d.Auth.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}
	resp := LoginResponse{Token: token, User: u}
	if token != "" {
		h.d.Auth.SetCookie(w, token)
		if h.d.SessionTTL > 0 {
			exp := time.Now().Add(h.d.SessionTTL).UTC()
			resp.ExpiresAt = &exp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.d.Auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.d.Auth.CurrentUser(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		writeError(w, r, "current user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
