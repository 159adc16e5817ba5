package mcpserver

import (
	"context"
	"html"

	"github.com/mark3labs/mcp-go/mcp"
)

type uploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ImageTag string `json:"imageTag"`
}

func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	asset, err := s.media.Import(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	alt := optString(req, "alt")
	return jsonResult(uploadResult{
		Filename: asset.Filename,
		URL:      asset.URL,
		Size:     asset.Size,
		ImageTag: `<img src="` + html.EscapeString(asset.URL) + `" alt="` + html.EscapeString(alt) + `">`,
	}), nil
}
