package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epropulse/epropulse/internal/auth"
	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/contact"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/store"
	"github.com/epropulse/epropulse/internal/testutil"
)

const (
	adminEmail    = "admin@epropulse.test"
	adminPassword = "correct horse battery"
)

type testEnv struct {
	router  http.Handler
	store   *store.SQL
	catalog *catalog.Service
	editor  *editor.Manager
}

// newEnv sets up a temp SQLite store, the services and the router.
// authEnabled=false means every request runs as the local admin.
func newEnv(t *testing.T, authEnabled bool) *testEnv {
	t.Helper()
	st := testutil.TestStore(t)
	return newEnvWithStore(t, st, st, authEnabled)
}

func newEnvWithStore(t *testing.T, st *store.SQL, content store.Store, authEnabled bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	if _, err := auth.EnsureAdmin(ctx, st, adminEmail, adminPassword); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	sessions := auth.NewSessions("test-secret", time.Hour)
	provider := auth.NewProvider(st, sessions, authEnabled, false)

	analyzer := seo.NewAnalyzer(16)
	cat := catalog.NewService(content, analyzer, catalog.Config{
		Site:        seo.SiteInfo{Name: "Epropulse", BaseURL: "https://epropulse.test"},
		Thresholds:  seo.DefaultThresholds(),
		Suggestions: []string{"Création de site web"},
	})
	contacts := contact.NewService(contact.DefaultConfig(), st)
	t.Cleanup(contacts.Close)

	mgr := editor.NewManager(editor.ManagerConfig{
		SEODelay:    time.Hour,
		ChangeDelay: time.Hour,
		Analyzer:    analyzer,
		Hooks:       editor.Hooks{Save: st.UpdatePostContent},
	})

	_, files := testutil.TestDir(t)

	// Minimal SSE handler stub: writes headers and returns.
	events := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})

	router := NewRouter(Deps{
		Catalog:    cat,
		Contact:    contacts,
		Auth:       provider,
		Messages:   st,
		Editor:     mgr,
		Media:      media.NewLibrary(files, 1024),
		Events:     events,
		SessionTTL: time.Hour,
	})
	return &testEnv{router: router, store: st, catalog: cat, editor: mgr}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) seedPost(t *testing.T, p *models.Post) {
	t.Helper()
	if err := e.catalog.SavePost(context.Background(), p); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
}

func TestListPosts_PublishedOnly(t *testing.T) {
	e := newEnv(t, false)
	e.seedPost(t, &models.Post{Title: "Réussir son référencement", Category: "SEO", Status: models.StatusPublished, Content: "<p>a</p>"})
	e.seedPost(t, &models.Post{Title: "Brouillon", Category: "Web", Content: "<p>b</p>"})

	w := e.do(t, http.MethodGet, "/posts?q=referencement", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[PostListResponse](t, w)
	if resp.Total != 1 || resp.Posts[0].Slug != "reussir-son-referencement" {
		t.Errorf("posts = %+v", resp.Posts)
	}
	if resp.Notice != "" {
		t.Errorf("notice = %q, want none", resp.Notice)
	}

	w = e.do(t, http.MethodGet, "/posts/brouillon", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("draft status = %d, want 404", w.Code)
	}
}

type brokenStore struct {
	store.Store
}

func (brokenStore) ListPosts(context.Context, store.PostFilter) ([]models.Post, error) {
	return nil, errors.New("database is locked")
}

func TestListPosts_StoreFailureIsSoft(t *testing.T) {
	st := testutil.TestStore(t)
	e := newEnvWithStore(t, st, brokenStore{Store: st}, false)

	w := e.do(t, http.MethodGet, "/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[PostListResponse](t, w)
	if resp.Notice == "" {
		t.Error("expected a notice")
	}
	if resp.Posts == nil || len(resp.Posts) != 0 {
		t.Errorf("posts = %#v, want empty list", resp.Posts)
	}
}

func TestGetPostAndMarkdown(t *testing.T) {
	e := newEnv(t, false)
	e.seedPost(t, &models.Post{Title: "Choisir son hébergeur", Status: models.StatusPublished,
		Content: "<h1>Choisir</h1><p>Un <strong>bon</strong> hébergeur.</p>"})

	w := e.do(t, http.MethodGet, "/posts/choisir-son-hebergeur", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	page := decode[catalog.PostPage](t, w)
	if page.Meta.Canonical != "https://epropulse.test/blog/choisir-son-hebergeur" {
		t.Errorf("canonical = %q", page.Meta.Canonical)
	}
	if page.Stats.H1 != 1 {
		t.Errorf("h1 = %d, want 1", page.Stats.H1)
	}

	w = e.do(t, http.MethodGet, "/posts/choisir-son-hebergeur/markdown", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("markdown status = %d", w.Code)
	}
	md := decode[MarkdownResponse](t, w)
	if !strings.Contains(md.Markdown, "**bon**") {
		t.Errorf("markdown = %q", md.Markdown)
	}
}

func TestProducts_PricedInTheirCurrency(t *testing.T) {
	e := newEnv(t, false)
	p := &models.Product{Name: "Pack Site Vitrine", PriceMinor: 250000, Currency: "XOF"}
	if err := e.catalog.SaveProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	w := e.do(t, http.MethodGet, "/products", nil, "Accept-Language", "fr-BJ,fr;q=0.8")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[ProductListResponse](t, w)
	if resp.Locale.CountryCode != "BJ" {
		t.Errorf("locale = %q, want BJ", resp.Locale.CountryCode)
	}
	if len(resp.Products) != 1 || resp.Products[0].Price != "250\u00a0000\u00a0FCFA" {
		t.Errorf("products = %+v", resp.Products)
	}

	w = e.do(t, http.MethodGet, "/products/pack-site-vitrine?country=fr", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("product status = %d", w.Code)
	}
}

func TestLocale(t *testing.T) {
	e := newEnv(t, false)

	tests := []struct {
		name, target, lang string
		wantCode           string
		wantDetected       bool
	}{
		{"query", "/locale?country=sn", "", "SN", true},
		{"accept-language", "/locale", "fr-CI", "CI", true},
		{"fallback", "/locale", "", "US", false},
		{"unknown", "/locale?country=zz", "", "US", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []string
			if tt.lang != "" {
				headers = []string{"Accept-Language", tt.lang}
			}
			w := e.do(t, http.MethodGet, tt.target, nil, headers...)
			resp := decode[LocaleResponse](t, w)
			if resp.CountryCode != tt.wantCode || resp.Detected != tt.wantDetected {
				t.Errorf("got %s detected=%v", resp.CountryCode, resp.Detected)
			}
			if resp.Flag == "" {
				t.Error("missing flag")
			}
		})
	}
}

func TestSuggestions(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodGet, "/search/suggestions?q=creation", nil)
	resp := decode[SuggestionsResponse](t, w)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "Création de site web" {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}

	w = e.do(t, http.MethodGet, "/search/suggestions", nil)
	resp = decode[SuggestionsResponse](t, w)
	if resp.Suggestions == nil || len(resp.Suggestions) != 0 {
		t.Errorf("empty query suggestions = %#v", resp.Suggestions)
	}
}

func submission() contact.Submission {
	return contact.Submission{
		Name:      "Awa",
		Email:     "awa@example.com",
		Message:   "Bonjour, je voudrais un devis.",
		StartedAt: time.Now().Add(-time.Minute).UnixMilli(),
	}
}

func TestContact(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(t, http.MethodPost, "/contact", submission())
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	spam := submission()
	spam.Website = "http://bot.example"
	w = e.do(t, http.MethodPost, "/contact", spam)
	if w.Code != http.StatusAccepted {
		t.Errorf("spam status = %d, want 202", w.Code)
	}

	bad := submission()
	bad.Email = "pas-un-email"
	w = e.do(t, http.MethodPost, "/contact", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d, want 400", w.Code)
	}
	if body := decode[errResponse](t, w); body.Fields["email"] == "" {
		t.Errorf("fields = %v", body.Fields)
	}

	// The limiter allows a burst of three per client.
	w = e.do(t, http.MethodPost, "/contact", submission())
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("4th submission = %d, want 429", w.Code)
	}

	msgs, err := e.store.ListContactMessages(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Errorf("stored %d messages, want 1", len(msgs))
	}
}

func TestAdmin_RequiresSession(t *testing.T) {
	e := newEnv(t, true)

	w := e.do(t, http.MethodGet, "/admin/posts", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", w.Code)
	}

	w = e.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: adminEmail, Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", w.Code)
	}

	w = e.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: adminEmail, Password: adminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d, body = %s", w.Code, w.Body.String())
	}
	login := decode[LoginResponse](t, w)
	if login.Token == "" || login.ExpiresAt == nil {
		t.Fatalf("login response = %+v", login)
	}
	if c := w.Result().Cookies(); len(c) != 1 || c[0].Name != auth.CookieName {
		t.Errorf("cookies = %v", c)
	}

	bearer := "Bearer " + login.Token
	w = e.do(t, http.MethodGet, "/admin/posts", nil, "Authorization", bearer)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("cache-control = %q", cc)
	}

	w = e.do(t, http.MethodGet, "/auth/me", nil, "Authorization", bearer)
	if me := decode[models.User](t, w); me.Email != adminEmail {
		t.Errorf("me = %+v", me)
	}

	w = e.do(t, http.MethodGet, "/admin/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous events = %d, want 401", w.Code)
	}
}

func TestAdmin_PostLifecycle(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(t, http.MethodPost, "/admin/posts", PostRequest{Title: "Mon premier article", Content: "<p>Bonjour<script>x</script></p>"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[models.Post](t, w)
	if created.Slug != "mon-premier-article" || created.Status != models.StatusDraft {
		t.Errorf("created = %+v", created)
	}
	if strings.Contains(created.Content, "script") {
		t.Errorf("content not normalized: %q", created.Content)
	}

	w = e.do(t, http.MethodPost, "/admin/posts", PostRequest{Title: "Autre", Slug: "mon-premier-article"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate slug = %d, want 409", w.Code)
	}

	w = e.do(t, http.MethodPost, "/admin/posts", PostRequest{Content: "<p>sans titre</p>"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", w.Code)
	}

	update := PostRequest{Title: "Mon premier article", Slug: created.Slug, Content: "<p>Publié</p>", Status: models.StatusPublished}
	w = e.do(t, http.MethodPut, "/admin/posts/"+created.ID, update)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if w = e.do(t, http.MethodGet, "/posts/"+created.Slug, nil); w.Code != http.StatusOK {
		t.Errorf("published post = %d, want 200", w.Code)
	}

	if w = e.do(t, http.MethodDelete, "/admin/posts/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w = e.do(t, http.MethodGet, "/admin/posts/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("after delete = %d, want 404", w.Code)
	}
	if w = e.do(t, http.MethodPut, "/admin/posts/missing", update); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestAdmin_Products(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(t, http.MethodPost, "/admin/products", ProductRequest{Name: "Audit SEO", PriceMinor: 1999, Currency: "eur"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	p := decode[models.Product](t, w)
	if p.Currency != "EUR" {
		t.Errorf("currency = %q", p.Currency)
	}

	w = e.do(t, http.MethodPut, "/admin/products/"+p.ID, ProductRequest{Name: "Audit SEO complet", Slug: p.Slug, PriceMinor: 2999, Currency: "EUR"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	updated := decode[models.Product](t, w)
	if updated.CreatedAt.IsZero() || updated.CreatedAt.Unix() != p.CreatedAt.Unix() {
		t.Errorf("created_at = %v, want %v", updated.CreatedAt, p.CreatedAt)
	}
	if updated.PriceMinor != 2999 || updated.Name != "Audit SEO complet" {
		t.Errorf("updated = %+v", updated)
	}
	if w = e.do(t, http.MethodPut, "/admin/products/missing", ProductRequest{Name: "X", PriceMinor: 1, Currency: "EUR"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
	if w = e.do(t, http.MethodDelete, "/admin/products/"+p.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w = e.do(t, http.MethodGet, "/products/"+p.Slug, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted product = %d, want 404", w.Code)
	}
}

func TestAdmin_AnalyzeSEO(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/admin/seo/analyze", AnalyzeRequest{HTML: "<h1>Titre</h1><p>Un deux trois.</p>"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[AnalyzeResponse](t, w)
	if resp.Stats.H1 != 1 || resp.Stats.Words == 0 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestEditorSession_ModalAndSave(t *testing.T) {
	e := newEnv(t, false)
	post := &models.Post{Title: "Article", Content: "<p>x</p>"}
	e.seedPost(t, post)

	w := e.do(t, http.MethodPost, "/admin/editor/sessions", OpenSessionRequest{PostID: post.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("open = %d, body = %s", w.Code, w.Body.String())
	}
	sess := decode[SessionView](t, w)
	if sess.HTML != "<p>x</p>" || sess.State != editor.StateReady || len(sess.Toolbar) == 0 {
		t.Fatalf("session = %+v", sess)
	}
	base := "/admin/editor/sessions/" + sess.ID

	w = e.do(t, http.MethodPost, base+"/commands", CommandRequest{Command: "insertText", Args: editor.Args{"text": "y"}})
	if v := decode[SessionView](t, w); v.HTML != "<p>xy</p>" {
		t.Errorf("after insertText html = %q", v.HTML)
	}

	w = e.do(t, http.MethodPost, base+"/commands", CommandRequest{Command: "explode"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown command = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodPost, base+"/modal", ModalRequest{Kind: editor.ModalImage})
	if act := decode[ActionResponse](t, w); !act.Applied || act.Session.Modal == nil {
		t.Fatalf("open modal = %+v", act)
	}

	// An unsafe URL keeps the dialog open.
	e.do(t, http.MethodPut, base+"/modal", ModalFieldsRequest{Fields: map[string]string{"url": "javascript:alert(1)"}})
	w = e.do(t, http.MethodPost, base+"/modal/confirm", nil)
	if act := decode[ActionResponse](t, w); act.Applied || act.Session.State != editor.StateModalOpen {
		t.Errorf("unsafe confirm = %+v", act)
	}

	e.do(t, http.MethodPut, base+"/modal", ModalFieldsRequest{Fields: map[string]string{"url": "https://cdn.example.com/a.png", "alt": "Logo"}})
	w = e.do(t, http.MethodPost, base+"/modal/confirm", nil)
	act := decode[ActionResponse](t, w)
	if !act.Applied || !strings.Contains(act.Session.HTML, `<img src="https://cdn.example.com/a.png"`) {
		t.Errorf("confirm = %+v", act)
	}

	w = e.do(t, http.MethodPut, base+"/modal", ModalFieldsRequest{Fields: map[string]string{"url": "x"}})
	if w.Code != http.StatusConflict {
		t.Errorf("fill without modal = %d, want 409", w.Code)
	}

	if w = e.do(t, http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Fatalf("close = %d", w.Code)
	}
	if w = e.do(t, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("closed session = %d, want 404", w.Code)
	}

	saved, err := e.store.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(saved.Content, "xy") || !strings.Contains(saved.Content, "cdn.example.com/a.png") {
		t.Errorf("saved content = %q", saved.Content)
	}
}

func TestEditorSession_EscapeCancelsModal(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/admin/editor/sessions", OpenSessionRequest{Content: "<p>brouillon</p>"})
	sess := decode[SessionView](t, w)
	base := "/admin/editor/sessions/" + sess.ID

	e.do(t, http.MethodPost, base+"/modal", ModalRequest{Kind: editor.ModalLink})
	w = e.do(t, http.MethodPost, base+"/keys", KeyRequest{Key: "Escape"})
	act := decode[ActionResponse](t, w)
	if !act.Applied || act.Session.Modal != nil || act.Session.State != editor.StateReady {
		t.Errorf("escape = %+v", act)
	}

	w = e.do(t, http.MethodPost, base+"/modal", ModalRequest{Kind: "gallery"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown modal = %d, want 400", w.Code)
	}
}

func TestEditorSession_UnknownPost(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/admin/editor/sessions", OpenSessionRequest{PostID: "post_missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if e.editor.Len() != 0 {
		t.Errorf("sessions = %d, want 0", e.editor.Len())
	}
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMedia_UploadListDelete(t *testing.T) {
	e := newEnv(t, false)

	w := uploadFile(t, e.router, "../../etc/logo.png", pngHeader)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	asset := decode[media.Asset](t, w)
	if !strings.HasSuffix(asset.Filename, ".png") || strings.Contains(asset.Filename, "logo") {
		t.Errorf("filename = %q", asset.Filename)
	}
	if asset.URL != media.URLPrefix+asset.Filename {
		t.Errorf("url = %q", asset.URL)
	}

	w = e.do(t, http.MethodGet, "/admin/media", nil)
	if list := decode[map[string][]media.Asset](t, w); len(list["media"]) != 1 {
		t.Errorf("list = %v", list)
	}

	if w = uploadFile(t, e.router, "notes.txt", []byte("just text")); w.Code != http.StatusBadRequest {
		t.Errorf("text upload = %d, want 400", w.Code)
	}
	if w = uploadFile(t, e.router, "big.png", append(pngHeader, make([]byte, 2048)...)); w.Code != http.StatusBadRequest {
		t.Errorf("oversized upload = %d, want 400", w.Code)
	}

	if w = e.do(t, http.MethodDelete, "/admin/media/"+asset.Filename, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if w = e.do(t, http.MethodDelete, "/admin/media/"+asset.Filename, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestMedia_ImportBlocksPrivateHosts(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(t, http.MethodPost, "/admin/media/import", MediaImportRequest{Source: "http://127.0.0.1/secret.png"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	e := newEnv(t, false)
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
