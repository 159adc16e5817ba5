// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Epropulse content tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/locale"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/search"
)

// GuidelinesURI names the SEO guidelines resource.
const GuidelinesURI = "epropulse://seo-guidelines"

// Server wraps the MCP server with Epropulse tools.
type Server struct {
	mcp     *server.MCPServer
	catalog *catalog.Service
	media   *media.Library
}

// New creates a new MCP server with all tools registered. lib may be nil,
// in which case upload_image is not offered.
func New(cat *catalog.Service, lib *media.Library, version string) *Server {
	s := &Server{catalog: cat, media: lib}

	s.mcp = server.NewMCPServer(
		"Epropulse",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Search published blog posts by title, excerpt, category and tags. "+
			"Matching ignores case and accents."),
		mcp.WithString("query", mcp.Description("Search term (empty lists every post)")),
		mcp.WithString("category", mcp.Description("Optional exact category")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription("Search the shop. Prices are formatted in each product's currency."),
		mcp.WithString("query", mcp.Description("Search term (empty lists every product)")),
		mcp.WithString("category", mcp.Description("Optional exact category")),
		mcp.WithString("country", mcp.Description("Optional ISO 3166 country code of the visitor")),
	), s.searchProducts)

	s.mcp.AddTool(mcp.NewTool("suggest",
		mcp.WithDescription("Complete a partial search term from post titles, product names and curated suggestions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Partial search term")),
	), s.suggest)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a published post as Markdown."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (e.g. bien-choisir-son-hebergeur)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("analyze_seo",
		mcp.WithDescription("Compute word count, reading time, heading, link and image counts of an HTML "+
			"document and grade them against the editorial targets. Read the "+GuidelinesURI+
			" resource or call get_seo_guidelines for the targets."),
		mcp.WithString("html", mcp.Required(), mcp.Description("HTML fragment as produced by the editor")),
	), s.analyzeSEO)

	s.mcp.AddTool(mcp.NewTool("get_seo_guidelines",
		mcp.WithDescription("Returns the editorial SEO targets and markup rules for blog posts."),
	), s.getGuidelines)

	s.mcp.AddTool(mcp.NewTool("resolve_locale",
		mcp.WithDescription("Resolve a country code to its name, currency and phone prefix. "+
			"Unknown codes resolve to the US fallback."),
		mcp.WithString("country", mcp.Required(), mcp.Description("ISO 3166 alpha-2 country code")),
	), s.resolveLocale)

	if lib != nil {
		s.mcp.AddTool(mcp.NewTool("upload_image",
			mcp.WithDescription("Store an image for use in a post. Accepts a public http(s) URL or a "+
				"data URI. Returns the URL and an <img> tag ready to paste into the post body."),
			mcp.WithString("source", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
			mcp.WithString("alt", mcp.Description("Alternative text for the returned <img> tag")),
		), s.uploadImage)
	}

	// Resource: SEO guidelines.
	s.mcp.AddResource(
		mcp.NewResource(GuidelinesURI, "SEO Guidelines",
			mcp.WithResourceDescription("Editorial targets and markup rules blog posts are graded against."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuidelinesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// optString returns an optional string argument, or "".
func optString(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := search.Query{Term: optString(req, "query"), Category: optString(req, "category")}
	list, err := s.catalog.SearchPosts(ctx, q, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

func (s *Server) searchProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := search.Query{Term: optString(req, "query"), Category: optString(req, "category")}
	list, err := s.catalog.SearchProducts(ctx, q, optString(req, "country"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

func (s *Server) suggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	suggestions := s.catalog.Suggest(ctx, query)
	if len(suggestions) == 0 {
		return mcp.NewToolResultText("no suggestions"), nil
	}
	return mcp.NewToolResultText(strings.Join(suggestions, "\n")), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	md, err := s.catalog.PostMarkdown(ctx, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) analyzeSEO(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markup, err := req.RequireString("html")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, rep := s.catalog.Analyze(markup, "")
	return jsonResult(map[string]any{"stats": st, "report": rep}), nil
}

func (s *Server) getGuidelines(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SEOGuidelines(s.catalog.Thresholds())), nil
}

func (s *Server) resolveLocale(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	country, err := req.RequireString("country")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info := locale.Resolve(country)
	return jsonResult(map[string]any{
		"locale":    info,
		"flag":      locale.FlagEmoji(info.CountryCode),
		"supported": locale.Supported(country),
	}), nil
}

func (s *Server) readGuidelinesResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GuidelinesURI,
			MIMEType: "text/markdown",
			Text:     SEOGuidelines(s.catalog.Thresholds()),
		},
	}, nil
}
