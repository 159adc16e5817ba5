package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/search"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/store"
	"github.com/epropulse/epropulse/internal/testutil"
)

func testConfig() Config {
	return Config{
		Site:        seo.SiteInfo{Name: "Epropulse", BaseURL: "https://epropulse.test", Locale: "fr_FR"},
		Thresholds:  seo.DefaultThresholds(),
		Suggestions: []string{"Création de site web", "Référencement naturel"},
	}
}

func seed(t *testing.T) (*Service, *store.SQL, *[]string) {
	t.Helper()
	ctx := context.Background()
	st := testutil.TestStore(t)
	var events []string
	svc := NewService(st, seo.NewAnalyzer(16), testConfig(), WithObserver(func(e string) { events = append(events, e) }))

	author := &models.Author{Name: "Awa Dossou"}
	require.NoError(t, svc.SaveAuthor(ctx, author))

	posts := []*models.Post{
		{Title: "Réussir son référencement", Category: "SEO", Tags: models.StringList{"google"}, Status: models.StatusPublished,
			AuthorID: author.ID, Excerpt: "Les bases du SEO.", Content: "<h1>Réussir</h1><p>Un <a href=\"https://example.com\">lien</a>.</p>"},
		{Title: "Choisir son hébergeur", Category: "Web", Tags: models.StringList{"hosting"}, Status: models.StatusPublished,
			Content: "<p>Comparatif.</p>"},
		{Title: "Brouillon secret", Category: "Web", Status: models.StatusDraft, Content: "<p>wip</p>"},
	}
	for _, p := range posts {
		require.NoError(t, svc.SavePost(ctx, p))
	}

	products := []*models.Product{
		{Name: "Pack Site Vitrine", Category: "Sites", PriceMinor: 250000, Currency: "xof", Featured: true},
		{Name: "Audit SEO", Category: "Services", PriceMinor: 1999, Currency: "EUR",
			Extra: models.StringMap{"delai": "48h"}},
	}
	for _, p := range products {
		require.NoError(t, svc.SaveProduct(ctx, p))
	}
	return svc, st, &events
}

func TestSearchPosts(t *testing.T) {
	svc, _, events := seed(t)
	ctx := context.Background()

	all, err := svc.SearchPosts(ctx, search.Query{}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	assert.ElementsMatch(t, []string{"SEO", "Web"}, all.Categories)
	for _, p := range all.Posts {
		assert.Empty(t, p.Content, "list results carry no body")
	}

	res, err := svc.SearchPosts(ctx, search.Query{Term: "REFERENCEMENT"}, "")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "reussir-son-referencement", res.Posts[0].Slug)

	res, err = svc.SearchPosts(ctx, search.Query{Category: "Web"}, "")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1, "drafts stay hidden")
	assert.Equal(t, "Choisir son hébergeur", res.Posts[0].Title)

	res, err = svc.SearchPosts(ctx, search.Query{}, "hosting")
	require.NoError(t, err)
	assert.Len(t, res.Posts, 1)

	assert.Equal(t, []string{EventPostSearch, EventPostSearch, EventPostSearch, EventPostSearch}, *events)
}

func TestPost(t *testing.T) {
	svc, _, _ := seed(t)
	ctx := context.Background()

	page, err := svc.Post(ctx, "reussir-son-referencement")
	require.NoError(t, err)
	require.NotNil(t, page.Author)
	assert.Equal(t, "Awa Dossou", page.Author.Name)
	assert.Equal(t, 1, page.Stats.H1)
	assert.Equal(t, 1, page.Stats.Links)
	assert.Equal(t, "Réussir son référencement | Epropulse", page.Meta.Title)
	assert.Equal(t, "https://epropulse.test/blog/reussir-son-referencement", page.Meta.Canonical)
	assert.Equal(t, "Les bases du SEO.", page.Meta.Description)
	assert.NotEmpty(t, page.Report.Checks)

	_, err = svc.Post(ctx, "brouillon-secret")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostMarkdown(t *testing.T) {
	svc, _, _ := seed(t)
	md, err := svc.PostMarkdown(context.Background(), "reussir-son-referencement")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Réussir son référencement\n\n"), md)
	assert.Contains(t, md, "[lien](https://example.com)")
}

func TestAuthor(t *testing.T) {
	svc, _, _ := seed(t)
	page, err := svc.Author(context.Background(), "awa-dossou")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "reussir-son-referencement", page.Posts[0].Slug)
}

func TestSearchProducts(t *testing.T) {
	svc, _, _ := seed(t)
	ctx := context.Background()

	res, err := svc.SearchProducts(ctx, search.Query{}, "BJ")
	require.NoError(t, err)
	assert.Equal(t, "XOF", res.Locale.CurrencyCode)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "Pack Site Vitrine", res.Products[0].Name, "featured first")
	assert.Equal(t, "250\u00a0000\u00a0FCFA", res.Products[0].Price)
	assert.Equal(t, "19,99\u00a0€", res.Products[1].Price)

	res, err = svc.SearchProducts(ctx, search.Query{Term: "audit"}, "")
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "US", res.Locale.CountryCode)

	p, err := svc.Product(ctx, "audit-seo", "FR")
	require.NoError(t, err)
	assert.Equal(t, "48h", p.Extra["delai"])
}

func TestSaveValidation(t *testing.T) {
	svc, _, _ := seed(t)
	ctx := context.Background()

	err := svc.SavePost(ctx, &models.Post{Title: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	err = svc.SaveProduct(ctx, &models.Product{Name: "Sans devise"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	dup := &models.Post{Title: "Réussir son référencement", Status: models.StatusDraft}
	assert.ErrorIs(t, svc.SavePost(ctx, dup), apperr.ErrConflict)
}

func TestSavePost_NormalizesContent(t *testing.T) {
	svc, _, _ := seed(t)
	p := &models.Post{Title: "Nettoyage", Content: `<p onclick="x()">Salut<script>alert(1)</script></p>`}
	require.NoError(t, svc.SavePost(context.Background(), p))
	assert.Equal(t, "<p>Salut</p>", p.Content)
	assert.Equal(t, models.StatusDraft, p.Status)
}

func TestSuggest(t *testing.T) {
	svc, _, events := seed(t)
	got := svc.Suggest(context.Background(), "ref")
	assert.Equal(t, []string{"Référencement naturel", "Réussir son référencement"}, got)
	assert.Empty(t, svc.Suggest(context.Background(), " "))
	assert.Contains(t, *events, EventSuggest)
}

type failingStore struct {
	store.Store
}

func (failingStore) ListPosts(context.Context, store.PostFilter) ([]models.Post, error) {
	return nil, errors.New("db down")
}

func (failingStore) ListProducts(context.Context, store.ProductFilter) ([]models.Product, error) {
	return nil, errors.New("db down")
}

func TestStoreFailures(t *testing.T) {
	svc := NewService(failingStore{}, seo.NewAnalyzer(4), testConfig())

	res, err := svc.SearchPosts(context.Background(), search.Query{}, "")
	require.Error(t, err)
	assert.NotNil(t, res.Posts)
	assert.NotNil(t, res.Categories)

	assert.Equal(t, []string{"Référencement naturel"}, svc.Suggest(context.Background(), "naturel"))
}

func TestAnalyze(t *testing.T) {
	svc := NewService(failingStore{}, seo.NewAnalyzer(4), testConfig())
	st, rep := svc.Analyze("<h2>Un</h2><p>deux trois</p>", "")
	assert.Equal(t, 3, st.Words)
	assert.Equal(t, 1, st.H2)
	assert.Equal(t, seo.LevelBad, rep.Level("words"))
}
