package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/store"
	"github.com/epropulse/epropulse/internal/textnorm"
)

// SavePost validates and stores p. The slug defaults to the slugified title
// and the content is normalized to the editor's markup.
func (s *Service) SavePost(ctx context.Context, p *models.Post) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Slug == "" {
		p.Slug = textnorm.Slugify(p.Title)
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	p.Content = editor.ParseHTML(p.Content).HTML()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.store.SavePost(ctx, p)
}

// GetPost returns any post, draft or not, for the back office.
func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.store.GetPost(ctx, id)
}

// ListAllPosts lists posts of every status for the back office.
func (s *Service) ListAllPosts(ctx context.Context, status models.PostStatus, limit, offset int) ([]models.Post, error) {
	posts, err := s.store.ListPosts(ctx, store.PostFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Content = ""
	}
	return posts, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.store.DeletePost(ctx, id)
}

// SaveProduct validates and stores p.
func (s *Service) SaveProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Slug == "" {
		p.Slug = textnorm.Slugify(p.Name)
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.store.SaveProduct(ctx, p)
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// SaveAuthor validates and stores a.
func (s *Service) SaveAuthor(ctx context.Context, a *models.Author) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Slug == "" {
		a.Slug = textnorm.Slugify(a.Name)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.store.SaveAuthor(ctx, a)
}

// SaveCategory validates and stores c.
func (s *Service) SaveCategory(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Slug == "" {
		c.Slug = textnorm.Slugify(c.Name)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.store.SaveCategory(ctx, c)
}
