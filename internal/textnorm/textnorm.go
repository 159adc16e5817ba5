// Package textnorm provides accent-insensitive folding and slug generation
// for French content.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// ligatures are not decomposed by NFD; expand them by hand.
var ligatures = strings.NewReplacer("œ", "oe", "Œ", "OE", "æ", "ae", "Æ", "AE", "ß", "ss")

// Fold lowercases s and strips diacritics: "Éléphant Œuvre" -> "elephant oeuvre".
// Whitespace is preserved so that substring matching keeps word boundaries.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Slugify converts a string to a URL-safe slug.
// "Marketing Digital à Cotonou" -> "marketing-digital-a-cotonou".
func Slugify(s string) string {
	s = ligatures.Replace(s)
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
