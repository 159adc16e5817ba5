package seo

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DescriptionLength is the maximum length, in runes, of a generated
// meta description.
const DescriptionLength = 160

// SiteInfo holds site-wide metadata defaults.
type SiteInfo struct {
	Name         string `yaml:"name" json:"name"`
	BaseURL      string `yaml:"base_url" json:"base_url"`
	DefaultImage string `yaml:"default_image" json:"default_image"`
	Locale       string `yaml:"locale" json:"locale"`
}

// PageInput describes one public page.
type PageInput struct {
	Title       string
	Description string
	Path        string
	Image       string
	Type        string // "website", "article" or "product"
	Tags        []string
	Author      string
	PublishedAt *time.Time
	BodyText    string
	NoIndex     bool
}

// Meta is the assembled <head> metadata of a page.
type Meta struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Canonical     string   `json:"canonical"`
	Robots        string   `json:"robots"`
	OGType        string   `json:"og_type"`
	OGImage       string   `json:"og_image,omitempty"`
	OGLocale      string   `json:"og_locale,omitempty"`
	Author        string   `json:"author,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PublishedTime string   `json:"published_time,omitempty"`
}

// BuildMeta assembles page metadata, falling back to site defaults and to
// an excerpt of the body when no description is given.
func BuildMeta(site SiteInfo, page PageInput) Meta {
	m := Meta{
		Title:     site.Name,
		Canonical: joinURL(site.BaseURL, page.Path),
		Robots:    "index, follow",
		OGType:    "website",
		OGImage:   page.Image,
		OGLocale:  site.Locale,
		Author:    page.Author,
		Tags:      page.Tags,
	}
	if t := strings.TrimSpace(page.Title); t != "" {
		m.Title = t
		if site.Name != "" {
			m.Title = t + " | " + site.Name
		}
	}
	if page.Type != "" {
		m.OGType = page.Type
	}
	if m.OGImage == "" {
		m.OGImage = site.DefaultImage
	}
	if m.OGImage != "" && strings.HasPrefix(m.OGImage, "/") {
		m.OGImage = joinURL(site.BaseURL, m.OGImage)
	}
	if page.NoIndex {
		m.Robots = "noindex, nofollow"
	}
	if page.PublishedAt != nil {
		m.PublishedTime = page.PublishedAt.UTC().Format(time.RFC3339)
	}

	m.Description = strings.TrimSpace(page.Description)
	if m.Description == "" {
		m.Description = Excerpt(page.BodyText, DescriptionLength)
	}
	return m
}

// Excerpt shortens text to at most limit runes, cutting on a word boundary
// and appending an ellipsis when something was removed.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:.") + "…"
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
