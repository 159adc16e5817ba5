// Package search filters product and post collections in memory and ranks
// search suggestions.
//
// Matching is deliberately simple: a normalized substring test over a
// configurable set of fields. There is no scoring. Results always keep the
// relative order of the source collection.
package search

import (
	"strings"

	"github.com/epropulse/epropulse/internal/textnorm"
)

// Well-known searchable fields. Any other field name is looked up in
// Item.Fields.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldTags        = "tags"
)

// DefaultSuggestionLimit is the number of suggestions returned when the
// caller does not ask for a specific count.
const DefaultSuggestionLimit = 5

// Item is a searchable record: a blog post or a product. Name holds the
// product name or the post title.
type Item struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// Query is the user's current search input.
type Query struct {
	Term     string `json:"term"`
	Category string `json:"category,omitempty"`
}

// Normalize case-folds s, strips diacritics and trims surrounding space.
func Normalize(s string) string {
	return strings.TrimSpace(textnorm.Fold(s))
}

// Engine filters collections over a fixed list of fields.
type Engine struct {
	fields []string
}

// NewEngine returns an engine searching the given fields, or the default
// fields (name, description, category, tags) when none are given.
func NewEngine(fields ...string) *Engine {
	if len(fields) == 0 {
		fields = []string{FieldName, FieldDescription, FieldCategory, FieldTags}
	}
	return &Engine{fields: append([]string(nil), fields...)}
}

// Fields returns the configured field names.
func (e *Engine) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Filter returns the items matching q, in source order. A nil collection
// yields an empty, non-nil result. The input slice is never modified.
func (e *Engine) Filter(items []Item, q Query) []Item {
	out := make([]Item, 0, len(items))
	term := Normalize(q.Term)
	category := strings.TrimSpace(q.Category)

	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		if term != "" && !e.matches(it, term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Match reports whether a single item satisfies q.
func (e *Engine) Match(it Item, q Query) bool {
	if c := strings.TrimSpace(q.Category); c != "" && it.Category != c {
		return false
	}
	term := Normalize(q.Term)
	return term == "" || e.matches(it, term)
}

func (e *Engine) matches(it Item, normTerm string) bool {
	for _, f := range e.fields {
		for _, v := range it.values(f) {
			if strings.Contains(Normalize(v), normTerm) {
				return true
			}
		}
	}
	return false
}

func (it Item) values(field string) []string {
	switch field {
	case FieldName:
		return []string{it.Name}
	case FieldDescription:
		return []string{it.Description}
	case FieldCategory:
		return []string{it.Category}
	case FieldTags:
		return it.Tags
	default:
		if v, ok := it.Fields[field]; ok {
			return []string{v}
		}
		return nil
	}
}

// Categories returns the distinct non-empty categories of items in order of
// first occurrence.
func Categories(items []Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		c := it.Category
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Suggest returns up to limit candidates whose normalized form contains the
// normalized query, keeping candidate order. Candidates that normalize to the
// same string are reported once. An empty query yields no suggestions.
func Suggest(query string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	out := []string{}
	q := Normalize(query)
	if q == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, c := range candidates {
		n := Normalize(c)
		if n == "" || !strings.Contains(n, q) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

// SuggestionPool merges free-form suggestions with item names, suggestions
// first.
func SuggestionPool(extra []string, items []Item) []string {
	pool := make([]string, 0, len(extra)+len(items))
	pool = append(pool, extra...)
	for _, it := range items {
		pool = append(pool, it.Name)
	}
	return pool
}
