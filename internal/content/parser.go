// Package content imports posts from a directory of HTML files with YAML
// frontmatter and keeps the store in step with it.
package content

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/textnorm"
)

// Ext is the extension of post source files.
const Ext = ".html"

// Frontmatter is the YAML header of a post file.
type Frontmatter struct {
	Title    string    `yaml:"title"`
	Slug     string    `yaml:"slug"`
	Excerpt  string    `yaml:"excerpt"`
	Category string    `yaml:"category"`
	Tags     []string  `yaml:"tags"`
	Author   string    `yaml:"author"`
	Status   string    `yaml:"status"`
	Cover    string    `yaml:"cover"`
	Date     time.Time `yaml:"date"`
}

// Result holds the output of parsing a post file.
type Result struct {
	Frontmatter Frontmatter
	// Body is the normalized editor markup of the file's body.
	Body  string
	Title string
	Slug  string
	// Excerpt falls back to the start of the body text.
	Excerpt string
	Tags    []string
}

// Parse splits frontmatter from the body and fills in what the header left
// out: the title from the first level-one heading, the slug from the title
// and the excerpt from the text.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	doc := editor.ParseHTML(body)
	res := &Result{
		Frontmatter: fm,
		Body:        doc.HTML(),
		Title:       strings.TrimSpace(fm.Title),
		Tags:        cleanTags(fm.Tags),
	}
	if res.Title == "" {
		res.Title = firstHeading(doc)
	}

	res.Slug = textnorm.Slugify(fm.Slug)
	if res.Slug == "" {
		res.Slug = textnorm.Slugify(res.Title)
	}

	res.Excerpt = strings.TrimSpace(fm.Excerpt)
	if res.Excerpt == "" {
		res.Excerpt = seo.Excerpt(doc.Text(), seo.DescriptionLength)
	}
	return res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Without a closing delimiter, or with invalid YAML, the
// whole input is body.
func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	yamlBlock := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	return fm, body
}

func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := textnorm.Fold(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func firstHeading(doc *editor.Document) string {
	for _, b := range doc.Blocks() {
		if b.Type == editor.BlockHeading && b.Level == 1 {
			return strings.TrimSpace(b.Text())
		}
	}
	return ""
}
