package store

import (
	"context"
	"strings"

	"github.com/epropulse/epropulse/internal/models"
)

const authorColumns = `id, slug, name, bio, avatar_url`

// ListAuthors returns every author by name.
func (s *SQL) ListAuthors(ctx context.Context) ([]models.Author, error) {
	authors := []models.Author{}
	if err := s.selectAll(ctx, &authors, `SELECT `+authorColumns+` FROM authors ORDER BY name`); err != nil {
		return nil, wrap("list authors", err)
	}
	return authors, nil
}

// GetAuthor returns the author with the given id.
func (s *SQL) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	var a models.Author
	if err := s.get(ctx, &a, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id); err != nil {
		return nil, wrap("get author", err)
	}
	return &a, nil
}

// GetAuthorBySlug returns the author with the given slug.
func (s *SQL) GetAuthorBySlug(ctx context.Context, slug string) (*models.Author, error) {
	var a models.Author
	if err := s.get(ctx, &a, `SELECT `+authorColumns+` FROM authors WHERE slug = ?`, slug); err != nil {
		return nil, wrap("get author", err)
	}
	return &a, nil
}

// SaveAuthor inserts a when it has no id and updates it otherwise.
func (s *SQL) SaveAuthor(ctx context.Context, a *models.Author) error {
	if a.ID != "" {
		return s.execOne(ctx, "update author",
			`UPDATE authors SET slug = ?, name = ?, bio = ?, avatar_url = ? WHERE id = ?`,
			a.Slug, a.Name, a.Bio, a.AvatarURL, a.ID)
	}
	id, err := newID("aut")
	if err != nil {
		return err
	}
	if _, err := s.exec(ctx, `INSERT INTO authors (`+authorColumns+`) VALUES (?, ?, ?, ?, ?)`,
		id, a.Slug, a.Name, a.Bio, a.AvatarURL); err != nil {
		return wrap("insert author", err)
	}
	a.ID = id
	return nil
}

// ListCategories returns the categories of kind, or all of them when kind is
// empty.
func (s *SQL) ListCategories(ctx context.Context, kind models.CategoryKind) ([]models.Category, error) {
	query := `SELECT id, slug, name, kind FROM categories`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY kind, name`

	cats := []models.Category{}
	if err := s.selectAll(ctx, &cats, query, args...); err != nil {
		return nil, wrap("list categories", err)
	}
	return cats, nil
}

// SaveCategory inserts c when it has no id and updates it otherwise.
func (s *SQL) SaveCategory(ctx context.Context, c *models.Category) error {
	if c.ID != "" {
		return s.execOne(ctx, "update category",
			`UPDATE categories SET slug = ?, name = ?, kind = ? WHERE id = ?`,
			c.Slug, c.Name, c.Kind, c.ID)
	}
	id, err := newID("cat")
	if err != nil {
		return err
	}
	if _, err := s.exec(ctx, `INSERT INTO categories (id, slug, name, kind) VALUES (?, ?, ?, ?)`,
		id, c.Slug, c.Name, c.Kind); err != nil {
		return wrap("insert category", err)
	}
	c.ID = id
	return nil
}

const productColumns = `id, slug, name, description, price_minor, currency, category, tags,
	image_url, download_url, featured, extra, created_at, updated_at`

// ListProducts returns products matching f, featured first.
func (s *SQL) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Featured {
		where = append(where, "featured = ?")
		args = append(args, true)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY featured DESC, name"
	query, args = page(query, args, f.Limit, f.Offset)

	products := []models.Product{}
	if err := s.selectAll(ctx, &products, query, args...); err != nil {
		return nil, wrap("list products", err)
	}
	return products, nil
}

// GetProduct returns the product with the given id.
func (s *SQL) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.getProduct(ctx, "id", id)
}

// GetProductBySlug returns the product with the given slug.
func (s *SQL) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.getProduct(ctx, "slug", slug)
}

func (s *SQL) getProduct(ctx context.Context, column, value string) (*models.Product, error) {
	var p models.Product
	if err := s.get(ctx, &p, `SELECT `+productColumns+` FROM products WHERE `+column+` = ?`, value); err != nil {
		return nil, wrap("get product", err)
	}
	return &p, nil
}

// SaveProduct inserts p when it has no id and updates it otherwise.
func (s *SQL) SaveProduct(ctx context.Context, p *models.Product) error {
	now := s.now()
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = models.StringList{}
	}
	if p.ID != "" {
		return s.execOne(ctx, "update product", `UPDATE products SET
				slug = ?, name = ?, description = ?, price_minor = ?, currency = ?, category = ?,
				tags = ?, image_url = ?, download_url = ?, featured = ?, extra = ?, updated_at = ?
			WHERE id = ?`,
			p.Slug, p.Name, p.Description, p.PriceMinor, p.Currency, p.Category,
			p.Tags, p.ImageURL, p.DownloadURL, p.Featured, p.Extra, p.UpdatedAt, p.ID)
	}

	id, err := newID("prd")
	if err != nil {
		return err
	}
	p.CreatedAt = now
	if _, err := s.exec(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Slug, p.Name, p.Description, p.PriceMinor, p.Currency, p.Category, p.Tags,
		p.ImageURL, p.DownloadURL, p.Featured, p.Extra, p.CreatedAt, p.UpdatedAt); err != nil {
		return wrap("insert product", err)
	}
	p.ID = id
	return nil
}

// DeleteProduct removes a product.
func (s *SQL) DeleteProduct(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete product", `DELETE FROM products WHERE id = ?`, id)
}
