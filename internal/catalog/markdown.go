package catalog

import (
	"context"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// PostMarkdown renders the published post with slug as Markdown, title
// first.
func (s *Service) PostMarkdown(ctx context.Context, slug string) (string, error) {
	page, err := s.Post(ctx, slug)
	if err != nil {
		return "", err
	}
	return ToMarkdown(page.Post.Title, page.Post.Content)
}

// ToMarkdown converts post markup to Markdown under a level-one title.
func ToMarkdown(title, markup string) (string, error) {
	body, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}
