// Package models defines the domain types for Epropulse.
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// CategoryKind separates blog categories from shop categories.
type CategoryKind string

const (
	KindPost    CategoryKind = "post"
	KindProduct CategoryKind = "product"
)

// Roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Post is a blog article. Content holds the editor's HTML.
type Post struct {
	ID             string     `db:"id" json:"id"`
	Slug           string     `db:"slug" json:"slug"`
	Title          string     `db:"title" json:"title"`
	Excerpt        string     `db:"excerpt" json:"excerpt"`
	Content        string     `db:"content" json:"content,omitempty"`
	CoverImage     string     `db:"cover_image" json:"cover_image,omitempty"`
	AuthorID       string     `db:"author_id" json:"author_id,omitempty"`
	Category       string     `db:"category" json:"category,omitempty"`
	Tags           StringList `db:"tags" json:"tags"`
	Status         PostStatus `db:"status" json:"status"`
	SourcePath     string     `db:"source_path" json:"-"`
	SourceChecksum string     `db:"source_checksum" json:"-"`
	Extra          StringMap  `db:"extra" json:"extra,omitempty"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate checks the fields an author must provide.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&p.Status, validation.Required, validation.In(StatusDraft, StatusPublished)),
		validation.Field(&p.Excerpt, validation.Length(0, 500)),
	)
}

// Published reports whether the post is visible to visitors.
func (p Post) Published() bool { return p.Status == StatusPublished }

// Author signs posts.
type Author struct {
	ID        string `db:"id" json:"id"`
	Slug      string `db:"slug" json:"slug"`
	Name      string `db:"name" json:"name"`
	Bio       string `db:"bio" json:"bio,omitempty"`
	AvatarURL string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// Validate checks the author fields.
func (a Author) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&a.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&a.AvatarURL, is.RequestURI),
	)
}

// Category groups posts or products.
type Category struct {
	ID   string       `db:"id" json:"id"`
	Slug string       `db:"slug" json:"slug"`
	Name string       `db:"name" json:"name"`
	Kind CategoryKind `db:"kind" json:"kind"`
}

// Validate checks the category fields.
func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&c.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&c.Kind, validation.Required, validation.In(KindPost, KindProduct)),
	)
}

// Product is a digital product sold in the shop. Prices are stored in minor
// units of Currency.
type Product struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	PriceMinor  int64      `db:"price_minor" json:"price_minor"`
	Currency    string     `db:"currency" json:"currency"`
	Category    string     `db:"category" json:"category,omitempty"`
	Tags        StringList `db:"tags" json:"tags"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
	DownloadURL string     `db:"download_url" json:"-"`
	Featured    bool       `db:"featured" json:"featured"`
	Extra       StringMap  `db:"extra" json:"extra,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate checks the product fields.
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Slug, validation.Required, validation.Match(slugPattern)),
		validation.Field(&p.PriceMinor, validation.Min(int64(0))),
		validation.Field(&p.Currency, validation.Required, validation.Length(3, 3), is.UpperCase),
	)
}

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject,omitempty"`
	Message   string    `db:"message" json:"message"`
	IP        string    `db:"ip" json:"ip,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// User is a back-office account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether u may use the back office.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin || u.Role == RoleEditor }

// StringList is a []string stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return EncodeJSON([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	*l = StringList{}
	return scanJSON(src, (*[]string)(l))
}

// StringMap is a map[string]string stored as a JSON object in a text column.
type StringMap map[string]string

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return EncodeJSON(map[string]string(m))
}

// Scan implements sql.Scanner.
func (m *StringMap) Scan(src any) error {
	*m = StringMap{}
	return scanJSON(src, (*map[string]string)(m))
}

// EncodeJSON returns the compact JSON text of v without HTML escaping, so
// "&", "<" and ">" are stored as typed.
func EncodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func scanJSON(src, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into JSON column", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
