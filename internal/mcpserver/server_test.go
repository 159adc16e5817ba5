package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	st := testutil.TestStore(t)
	cat := catalog.NewService(st, seo.NewAnalyzer(16), catalog.Config{
		Thresholds:  seo.DefaultThresholds(),
		Suggestions: []string{"Référencement naturel"},
	})
	if err := cat.SavePost(ctx, &models.Post{
		Title:    "Bien choisir son hébergeur",
		Category: "Web",
		Status:   models.StatusPublished,
		Content:  "<h1>Bien choisir</h1><p>Un <em>bon</em> hébergeur.</p>",
	}); err != nil {
		t.Fatal(err)
	}
	if err := cat.SaveProduct(ctx, &models.Product{Name: "Audit SEO", PriceMinor: 1999, Currency: "EUR"}); err != nil {
		t.Fatal(err)
	}

	_, files := testutil.TestDir(t)
	return New(cat, media.NewLibrary(files, 0), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "search_products":
		result, err = srv.searchProducts(ctx, req)
	case "suggest":
		result, err = srv.suggest(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "analyze_seo":
		result, err = srv.analyzeSEO(ctx, req)
	case "get_seo_guidelines":
		result, err = srv.getGuidelines(ctx, req)
	case "resolve_locale":
		result, err = srv.resolveLocale(ctx, req)
	case "upload_image":
		result, err = srv.uploadImage(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchPosts(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_posts", map[string]interface{}{"query": "HEBERGEUR"})
	var list catalog.PostList
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || list.Posts[0].Slug != "bien-choisir-son-hebergeur" {
		t.Errorf("posts = %+v", list.Posts)
	}

	r = callTool(t, srv, "search_posts", map[string]interface{}{"category": "SEO"})
	_ = json.Unmarshal([]byte(resultText(r)), &list)
	if list.Total != 0 {
		t.Errorf("category filter total = %d, want 0", list.Total)
	}
}

func TestSearchProducts(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_products", map[string]interface{}{"query": "audit"})
	if text := resultText(r); !strings.Contains(text, "Audit SEO") {
		t.Errorf("result = %s", text)
	}
}

func TestSuggest(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "suggest", map[string]interface{}{"query": "refe"})
	if text := resultText(r); text != "Référencement naturel" {
		t.Errorf("suggest = %q", text)
	}

	r = callTool(t, srv, "suggest", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestReadPost(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_post", map[string]interface{}{"slug": "bien-choisir-son-hebergeur"})
	if text := resultText(r); !strings.Contains(text, "# Bien choisir") || !strings.Contains(text, "*bon*") {
		t.Errorf("markdown = %q", text)
	}

	r = callTool(t, srv, "read_post", map[string]interface{}{"slug": "nope"})
	if !r.IsError || resultText(r) != "not found: nope" {
		t.Errorf("missing post = %q", resultText(r))
	}
}

func TestAnalyzeSEO(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "analyze_seo", map[string]interface{}{"html": "<h1>A</h1><h1>B</h1><p>mot</p>"})

	var got struct {
		Stats  seo.Stats  `json:"stats"`
		Report seo.Report `json:"report"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stats.H1 != 2 || got.Report.Level("h1") != seo.LevelBad {
		t.Errorf("analysis = %+v", got)
	}
}

func TestResolveLocale(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "resolve_locale", map[string]interface{}{"country": "sn"})
	text := resultText(r)
	if !strings.Contains(text, `"currency_code": "XOF"`) || !strings.Contains(text, `"supported": true`) {
		t.Errorf("locale = %s", text)
	}
}

func TestGuidelines(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_seo_guidelines", nil)
	if text := resultText(r); !strings.Contains(text, "300 or more") {
		t.Errorf("guidelines missing word target:\n%s", text)
	}

	contents, err := srv.readGuidelinesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != GuidelinesURI {
		t.Errorf("resource = %#v", contents[0])
	}
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadImage(t *testing.T) {
	srv := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

	r := callTool(t, srv, "upload_image", map[string]interface{}{"source": uri, "alt": `Logo "Epropulse"`})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	var res uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.URL, media.URLPrefix) || !strings.HasSuffix(res.Filename, ".png") {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.ImageTag, `alt="Logo &#34;Epropulse&#34;"`) {
		t.Errorf("image tag = %s", res.ImageTag)
	}

	r = callTool(t, srv, "upload_image", map[string]interface{}{"source": "http://169.254.169.254/latest"})
	if !r.IsError {
		t.Error("expected metadata host to be blocked")
	}
}
