// Package store persists posts, products and accounts in SQL. SQLite is the
// default backend; PostgreSQL is used for hosted deployments.
package store

import (
	"context"

	"github.com/epropulse/epropulse/internal/models"
)

// PostFilter narrows ListPosts. Zero values disable a criterion.
type PostFilter struct {
	Status   models.PostStatus
	Category string
	Tag      string
	AuthorID string
	Limit    int
	Offset   int
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Category string
	Featured bool
	Limit    int
	Offset   int
}

// TagCount is a tag and the number of published posts carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Store is the content store. Consumers depend on this interface rather than
// the concrete *SQL type to allow substituting fakes in tests.
type Store interface {
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostBySource(ctx context.Context, path string) (*models.Post, error)
	PostSources(ctx context.Context) (map[string]string, error)
	SavePost(ctx context.Context, p *models.Post) error
	UpdatePostContent(ctx context.Context, id, content string) error
	DeletePost(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]TagCount, error)

	ListAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthor(ctx context.Context, id string) (*models.Author, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*models.Author, error)
	SaveAuthor(ctx context.Context, a *models.Author) error

	ListCategories(ctx context.Context, kind models.CategoryKind) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error

	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	SaveContactMessage(ctx context.Context, m *models.ContactMessage) error
	ListContactMessages(ctx context.Context, limit, offset int) ([]models.ContactMessage, error)

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	CountUsers(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Verify *SQL satisfies Store at compile time.
var _ Store = (*SQL)(nil)
