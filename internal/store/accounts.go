package store

import (
	"context"
	"strings"

	"github.com/epropulse/epropulse/internal/models"
)

// SaveContactMessage stores a contact form message.
func (s *SQL) SaveContactMessage(ctx context.Context, m *models.ContactMessage) error {
	id, err := newID("msg")
	if err != nil {
		return err
	}
	m.CreatedAt = s.now()
	if _, err := s.exec(ctx, `INSERT INTO contact_messages (id, name, email, subject, message, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, m.Name, m.Email, m.Subject, m.Message, m.IP, m.CreatedAt); err != nil {
		return wrap("insert contact message", err)
	}
	m.ID = id
	return nil
}

// ListContactMessages returns contact messages, newest first.
func (s *SQL) ListContactMessages(ctx context.Context, limit, offset int) ([]models.ContactMessage, error) {
	query, args := page(`SELECT id, name, email, subject, message, ip, created_at
		FROM contact_messages ORDER BY created_at DESC, id`, nil, limit, offset)
	msgs := []models.ContactMessage{}
	if err := s.selectAll(ctx, &msgs, query, args...); err != nil {
		return nil, wrap("list contact messages", err)
	}
	return msgs, nil
}

const userColumns = `id, email, name, password_hash, role, created_at`

// GetUser returns the user with the given id.
func (s *SQL) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, wrap("get user", err)
	}
	return &u, nil
}

// GetUserByEmail returns the user with the given email, compared
// case-insensitively.
func (s *SQL) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, wrap("get user", err)
	}
	return &u, nil
}

// SaveUser inserts u when it has no id and updates it otherwise. Emails are
// stored lower-cased.
func (s *SQL) SaveUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleAdmin
	}
	if u.ID != "" {
		return s.execOne(ctx, "update user",
			`UPDATE users SET email = ?, name = ?, password_hash = ?, role = ? WHERE id = ?`,
			u.Email, u.Name, u.PasswordHash, u.Role, u.ID)
	}
	id, err := newID("usr")
	if err != nil {
		return err
	}
	u.CreatedAt = s.now()
	if _, err := s.exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt); err != nil {
		return wrap("insert user", err)
	}
	u.ID = id
	return nil
}

// CountUsers returns the number of accounts.
func (s *SQL) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.get(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, wrap("count users", err)
	}
	return n, nil
}
