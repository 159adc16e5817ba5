// Package catalog serves the public blog and shop: it loads records from the
// content store, filters them with the search engine and decorates them with
// SEO metadata and localized prices.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/locale"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/search"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/store"
)

// Observed events.
const (
	EventPostSearch    = "posts"
	EventProductSearch = "products"
	EventSuggest       = "suggest"
)

// Config tunes the public catalogue.
type Config struct {
	Site            seo.SiteInfo
	Thresholds      seo.Thresholds
	SearchFields    []string
	Suggestions     []string
	SuggestionLimit int
}

// PostList is the result of a post search.
type PostList struct {
	Posts      []models.Post `json:"posts"`
	Categories []string      `json:"categories"`
	Total      int           `json:"total"`
}

// PostPage is a post with everything needed to render it.
type PostPage struct {
	Post   models.Post    `json:"post"`
	Author *models.Author `json:"author,omitempty"`
	Meta   seo.Meta       `json:"meta"`
	Stats  seo.Stats      `json:"stats"`
	Report seo.Report     `json:"report"`
}

// AuthorPage is an author and their published posts.
type AuthorPage struct {
	Author models.Author `json:"author"`
	Posts  []models.Post `json:"posts"`
	Meta   seo.Meta      `json:"meta"`
}

// ProductView is a product with its display price.
type ProductView struct {
	models.Product
	Price string `json:"price"`
}

// ProductList is the result of a product search.
type ProductList struct {
	Products   []ProductView `json:"products"`
	Categories []string      `json:"categories"`
	Total      int           `json:"total"`
	Locale     locale.Info   `json:"locale"`
}

// Service coordinates the store, the search engine and the SEO analyzer.
type Service struct {
	store    store.Store
	engine   *search.Engine
	analyzer *seo.Analyzer
	cfg      Config
	logger   *slog.Logger
	observe  func(event string)
}

// Option configures a Service.
type Option func(*Service)

// WithObserver registers a hook called for each search and suggestion
// request.
func WithObserver(fn func(event string)) Option {
	return func(s *Service) { s.observe = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a catalogue service. analyzer may be shared with the
// editor so both reuse the same memo.
func NewService(st store.Store, analyzer *seo.Analyzer, cfg Config, opts ...Option) *Service {
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = search.DefaultSuggestionLimit
	}
	s := &Service{
		store:    st,
		engine:   search.NewEngine(cfg.SearchFields...),
		analyzer: analyzer,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) notify(event string) {
	if s.observe != nil {
		s.observe(event)
	}
}

// SearchPosts filters the published posts carrying tag (when set) by q.
// Categories are computed before the query is applied so the category picker
// stays stable while typing.
func (s *Service) SearchPosts(ctx context.Context, q search.Query, tag string) (PostList, error) {
	s.notify(EventPostSearch)
	posts, err := s.store.ListPosts(ctx, store.PostFilter{Status: models.StatusPublished, Tag: tag})
	if err != nil {
		return PostList{Posts: []models.Post{}, Categories: []string{}}, err
	}

	items := make([]search.Item, len(posts))
	byID := make(map[string]models.Post, len(posts))
	for i, p := range posts {
		items[i] = PostItem(p)
		p.Content = ""
		byID[p.ID] = p
	}

	matched := s.engine.Filter(items, q)
	out := make([]models.Post, 0, len(matched))
	for _, it := range matched {
		out = append(out, byID[it.ID])
	}
	return PostList{Posts: out, Categories: search.Categories(items), Total: len(out)}, nil
}

// Post returns the published post with slug.
func (s *Service) Post(ctx context.Context, slug string) (*PostPage, error) {
	p, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Published() {
		return nil, apperr.ErrNotFound
	}

	page := &PostPage{Post: *p}
	authorName := ""
	if p.AuthorID != "" {
		a, err := s.store.GetAuthor(ctx, p.AuthorID)
		switch {
		case err == nil:
			page.Author = a
			authorName = a.Name
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}

	text := seo.PlainText(p.Content)
	page.Stats = s.analyzer.Analyze(p.Content, text)
	page.Report = seo.Classify(page.Stats, s.cfg.Thresholds)
	page.Meta = seo.BuildMeta(s.cfg.Site, seo.PageInput{
		Title:       p.Title,
		Description: p.Excerpt,
		Path:        "/blog/" + p.Slug,
		Image:       p.CoverImage,
		Type:        "article",
		Tags:        p.Tags,
		Author:      authorName,
		PublishedAt: p.PublishedAt,
		BodyText:    text,
	})
	return page, nil
}

// Authors lists every author.
func (s *Service) Authors(ctx context.Context) ([]models.Author, error) {
	return s.store.ListAuthors(ctx)
}

// Author returns the author with slug and their published posts.
func (s *Service) Author(ctx context.Context, slug string) (*AuthorPage, error) {
	a, err := s.store.GetAuthorBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.ListPosts(ctx, store.PostFilter{Status: models.StatusPublished, AuthorID: a.ID})
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Content = ""
	}
	return &AuthorPage{
		Author: *a,
		Posts:  posts,
		Meta: seo.BuildMeta(s.cfg.Site, seo.PageInput{
			Title:       a.Name,
			Description: a.Bio,
			Path:        "/auteurs/" + a.Slug,
			Image:       a.AvatarURL,
			Type:        "profile",
		}),
	}, nil
}

// Categories lists the categories of kind.
func (s *Service) Categories(ctx context.Context, kind models.CategoryKind) ([]models.Category, error) {
	return s.store.ListCategories(ctx, kind)
}

// Tags counts the tags of published posts.
func (s *Service) Tags(ctx context.Context) ([]store.TagCount, error) {
	return s.store.ListTags(ctx)
}

// SearchProducts filters the shop by q and prices it for country.
func (s *Service) SearchProducts(ctx context.Context, q search.Query, country string) (ProductList, error) {
	s.notify(EventProductSearch)
	info := locale.Resolve(country)
	products, err := s.store.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		return ProductList{Products: []ProductView{}, Categories: []string{}, Locale: info}, err
	}

	items := make([]search.Item, len(products))
	byID := make(map[string]models.Product, len(products))
	for i, p := range products {
		items[i] = ProductItem(p)
		byID[p.ID] = p
	}

	matched := s.engine.Filter(items, q)
	out := make([]ProductView, 0, len(matched))
	for _, it := range matched {
		out = append(out, viewProduct(byID[it.ID], info))
	}
	return ProductList{Products: out, Categories: search.Categories(items), Total: len(out), Locale: info}, nil
}

// Product returns the product with slug priced for country.
func (s *Service) Product(ctx context.Context, slug, country string) (*ProductView, error) {
	p, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	v := viewProduct(*p, locale.Resolve(country))
	return &v, nil
}

// Suggest completes query from the configured suggestions, post titles and
// product names. Store failures degrade to the configured suggestions.
func (s *Service) Suggest(ctx context.Context, query string) []string {
	s.notify(EventSuggest)
	if strings.TrimSpace(query) == "" {
		return []string{}
	}

	var items []search.Item
	if posts, err := s.store.ListPosts(ctx, store.PostFilter{Status: models.StatusPublished}); err == nil {
		for _, p := range posts {
			items = append(items, PostItem(p))
		}
	} else {
		s.logger.Warn("suggest: list posts failed", slog.String("error", err.Error()))
	}
	if products, err := s.store.ListProducts(ctx, store.ProductFilter{}); err == nil {
		for _, p := range products {
			items = append(items, ProductItem(p))
		}
	} else {
		s.logger.Warn("suggest: list products failed", slog.String("error", err.Error()))
	}

	return search.Suggest(query, search.SuggestionPool(s.cfg.Suggestions, items), s.cfg.SuggestionLimit)
}

// Analyze computes the statistics and grades of markup. text defaults to the
// visible text of markup.
func (s *Service) Analyze(markup, text string) (seo.Stats, seo.Report) {
	if text == "" {
		text = seo.PlainText(markup)
	}
	st := s.analyzer.Analyze(markup, text)
	return st, seo.Classify(st, s.cfg.Thresholds)
}

// Thresholds returns the editorial targets.
func (s *Service) Thresholds() seo.Thresholds { return s.cfg.Thresholds }

// PostItem projects a post onto a search item. Extra fields stay searchable
// by key.
func PostItem(p models.Post) search.Item {
	fields := make(map[string]string, len(p.Extra)+1)
	for k, v := range p.Extra {
		fields[k] = v
	}
	fields["slug"] = p.Slug
	return search.Item{
		ID:          p.ID,
		Name:        p.Title,
		Category:    p.Category,
		Description: p.Excerpt,
		Tags:        p.Tags,
		Fields:      fields,
	}
}

// ProductItem projects a product onto a search item.
func ProductItem(p models.Product) search.Item {
	fields := make(map[string]string, len(p.Extra)+1)
	for k, v := range p.Extra {
		fields[k] = v
	}
	fields["slug"] = p.Slug
	return search.Item{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Tags:        p.Tags,
		Fields:      fields,
	}
}

// viewProduct formats the price in the product's own currency. When the
// currency is unknown the visitor's conventions are used.
func viewProduct(p models.Product, visitor locale.Info) ProductView {
	info, ok := locale.ByCurrency(p.Currency)
	if !ok {
		info = visitor
		info.CurrencySymbol = p.Currency
	}
	return ProductView{Product: p, Price: locale.FormatPrice(p.PriceMinor, info)}
}
