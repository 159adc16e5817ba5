package api

import (
	"time"

	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/locale"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/seo"
)

// PostListResponse is the public post listing. Notice is set when the
// content store could not be read and the lists are empty.
type PostListResponse struct {
	catalog.PostList
	Notice string `json:"notice,omitempty" example:"Le contenu est momentanément indisponible."`
}

// ProductListResponse is the public shop listing.
type ProductListResponse struct {
	catalog.ProductList
	Notice string `json:"notice,omitempty"`
}

// SuggestionsResponse wraps search suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// LocaleResponse is the resolved locale of a visitor.
type LocaleResponse struct {
	locale.Info
	Flag string `json:"flag" example:"🇸🇳"`
	// Detected reports whether the country came from the request rather
	// than the fallback.
	Detected bool `json:"detected"`
}

// MarkdownResponse is a post exported as Markdown.
type MarkdownResponse struct {
	Slug     string `json:"slug" example:"bien-choisir-son-hebergeur" validate:"required"`
	Markdown string `json:"markdown" validate:"required"`
}

// ContactResponse acknowledges a contact form submission.
type ContactResponse struct {
	Status string `json:"status" example:"received" validate:"required"`
}

// LoginRequest is the request body for signing in.
type LoginRequest struct {
	Email    string `json:"email" example:"admin@epropulse.com" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the signed-in user.
type LoginResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user" validate:"required"`
}

// PostRequest is the request body for creating or replacing a post.
type PostRequest struct {
	Title      string            `json:"title" example:"Bien choisir son hébergeur" validate:"required"`
	Slug       string            `json:"slug,omitempty" example:"bien-choisir-son-hebergeur"`
	Excerpt    string            `json:"excerpt,omitempty"`
	Content    string            `json:"content"`
	CoverImage string            `json:"cover_image,omitempty"`
	AuthorID   string            `json:"author_id,omitempty"`
	Category   string            `json:"category,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Status     models.PostStatus `json:"status,omitempty" enums:"draft,published"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (req PostRequest) apply(p *models.Post) {
	p.Title = req.Title
	p.Slug = req.Slug
	p.Excerpt = req.Excerpt
	p.Content = req.Content
	p.CoverImage = req.CoverImage
	p.AuthorID = req.AuthorID
	p.Category = req.Category
	p.Tags = req.Tags
	p.Status = req.Status
	p.Extra = req.Extra
}

// PostListAdminResponse is the back-office post listing, drafts included.
type PostListAdminResponse struct {
	Posts []models.Post `json:"posts" validate:"required"`
	Total int           `json:"total" example:"12" validate:"required"`
}

// ProductRequest is the request body for creating or replacing a product.
type ProductRequest struct {
	Name        string            `json:"name" example:"Pack de démarrage e-commerce" validate:"required"`
	Slug        string            `json:"slug,omitempty"`
	Description string            `json:"description"`
	PriceMinor  int64             `json:"price_minor" example:"250000"`
	Currency    string            `json:"currency" example:"XOF" validate:"required"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	DownloadURL string            `json:"download_url,omitempty"`
	Featured    bool              `json:"featured"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func (req ProductRequest) apply(p *models.Product) {
	p.Name = req.Name
	p.Slug = req.Slug
	p.Description = req.Description
	p.PriceMinor = req.PriceMinor
	p.Currency = req.Currency
	p.Category = req.Category
	p.Tags = req.Tags
	p.ImageURL = req.ImageURL
	p.DownloadURL = req.DownloadURL
	p.Featured = req.Featured
	p.Extra = req.Extra
}

// AnalyzeRequest is the request body for an SEO analysis.
type AnalyzeRequest struct {
	HTML string `json:"html" example:"<h1>Titre</h1><p>Texte</p>" validate:"required"`
	Text string `json:"text,omitempty"`
}

// AnalyzeResponse carries the statistics and grades of a document.
type AnalyzeResponse struct {
	Stats  seo.Stats  `json:"stats" validate:"required"`
	Report seo.Report `json:"report" validate:"required"`
}

// MediaImportRequest asks the server to fetch or decode an image.
type MediaImportRequest struct {
	Source string `json:"source" example:"https://example.com/cover.png" validate:"required"`
}

// OpenSessionRequest opens an editor session. Content is used only when
// PostID is empty.
type OpenSessionRequest struct {
	PostID  string `json:"post_id,omitempty"`
	Content string `json:"content,omitempty"`
}

// CommandRequest invokes a toolbar command.
type CommandRequest struct {
	Command string      `json:"command" example:"bold" validate:"required"`
	Args    editor.Args `json:"args,omitempty"`
}

// ModalRequest opens an insertion dialog.
type ModalRequest struct {
	Kind editor.ModalKind `json:"kind" enums:"link,image,video" validate:"required"`
}

// ModalFieldsRequest fills the open dialog.
type ModalFieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// KeyRequest is a keyboard event routed to the surface.
type KeyRequest struct {
	Key string `json:"key" example:"Escape" validate:"required"`
}

// SessionView is the full state of an editor session.
type SessionView struct {
	ID        string              `json:"id" validate:"required"`
	PostID    string              `json:"post_id,omitempty"`
	State     editor.State        `json:"state" validate:"required"`
	HTML      string              `json:"html"`
	Selection editor.Selection    `json:"selection"`
	Stats     seo.Stats           `json:"stats"`
	Report    seo.Report          `json:"report"`
	Modal     *editor.ModalView   `json:"modal,omitempty"`
	Toolbar   []editor.GroupState `json:"toolbar"`
	Notice    string              `json:"notice,omitempty"`
}

// ActionResponse reports whether an action took effect, along with the
// resulting session state.
type ActionResponse struct {
	Applied bool        `json:"applied"`
	Session SessionView `json:"session"`
}
