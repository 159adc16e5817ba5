package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/models"
)

// CookieName is the name of the session cookie.
const CookieName = "epropulse_session"

// LocalUser is the identity attached to requests when authentication is
// disabled.
var LocalUser = models.User{ID: "local", Email: "local@localhost", Name: "Local", Role: models.RoleAdmin}

// UserStore is the part of the content store the provider needs.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	CountUsers(ctx context.Context) (int, error)
}

// Provider signs users in and resolves the user behind a session token.
type Provider struct {
	users    UserStore
	sessions *Sessions
	enabled  bool
	secure   bool
}

// NewProvider creates a Provider. With enabled false every request is
// treated as LocalUser.
func NewProvider(users UserStore, sessions *Sessions, enabled, secureCookie bool) *Provider {
	return &Provider{users: users, sessions: sessions, enabled: enabled, secure: secureCookie}
}

// Enabled reports whether authentication is enforced.
func (p *Provider) Enabled() bool { return p.enabled }

// dummyHash keeps sign-in timing similar for unknown emails.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3k6YdAnR9Ecv0sqc0qWz3iS"

// SignIn checks credentials and returns a session token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_, _ = CheckPassword(dummyHash, password)
			return "", nil, apperr.ErrUnauthorized
		}
		return "", nil, err
	}
	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return "", nil, err
	}
	if !ok || !u.IsAdmin() {
		return "", nil, apperr.ErrUnauthorized
	}
	token, err := p.sessions.Issue(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}
	return token, u, nil
}

// CurrentUser returns the user a token belongs to.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if !p.enabled {
		u := LocalUser
		return &u, nil
	}
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}
	claims, err := p.sessions.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	u, err := p.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

// SetCookie stores token in the session cookie.
func (p *Provider) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(p.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (p *Provider) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts a session token from the cookie or a Bearer
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

type ctxKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the user stored by RequireAdmin, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

// RequireAdmin rejects requests without a valid admin session. When
// authentication is disabled all requests pass as LocalUser.
func (p *Provider) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := p.CurrentUser(r.Context(), TokenFromRequest(r))
		if err != nil {
			if !errors.Is(err, apperr.ErrUnauthorized) {
				slog.Error("resolve session", slog.String("error", err.Error()))
			}
			unauthorized(w)
			return
		}
		if !u.IsAdmin() {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// EnsureAdmin creates the bootstrap admin account when no user exists yet.
// An empty email disables bootstrapping.
func EnsureAdmin(ctx context.Context, users UserStore, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		return false, fmt.Errorf("%w: bootstrap admin password is empty", apperr.ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &models.User{Email: email, Name: "Admin", PasswordHash: hash, Role: models.RoleAdmin}
	if err := users.SaveUser(ctx, u); err != nil {
		return false, err
	}
	slog.Info("bootstrap admin created", slog.String("email", u.Email))
	return true, nil
}
