// Package seo computes structural statistics for authored content, grades
// them against editorial thresholds and assembles page metadata.
package seo

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

// Stats summarises the structure of a document.
type Stats struct {
	Words       int `json:"words"`
	ReadingTime int `json:"reading_time"`
	H1          int `json:"h1"`
	H2          int `json:"h2"`
	H3          int `json:"h3"`
	Links       int `json:"links"`
	Images      int `json:"images"`
	Videos      int `json:"videos"`
}

// CountWords counts the whitespace-delimited tokens of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime returns ceil(words / WordsPerMinute) minutes.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// Analyze computes Stats from a markup fragment and its plain-text projection.
// Malformed markup never fails the call: the result is all zeros and the
// problem is logged.
func Analyze(markup, plainText string) Stats {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		slog.Warn("seo: parse markup failed", slog.String("error", err.Error()))
		return Stats{}
	}

	words := CountWords(plainText)
	return Stats{
		Words:       words,
		ReadingTime: ReadingTime(words),
		H1:          doc.Find("h1").Length(),
		H2:          doc.Find("h2").Length(),
		H3:          doc.Find("h3").Length(),
		Links:       doc.Find("a").Length(),
		Images:      doc.Find("img").Length(),
		Videos:      doc.Find("video").Length(),
	}
}

// blockAtoms separate words even when the markup has no whitespace between
// them ("<h1>Titre</h1><p>Texte</p>").
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Section: true, atom.Article: true,
	atom.Figure: true, atom.Figcaption: true, atom.Table: true, atom.Tr: true, atom.Td: true,
	atom.Th: true, atom.Hr: true,
}

// PlainText projects markup onto its visible text. Script and style content
// is dropped; block elements are separated by newlines.
func PlainText(markup string) string {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.TrimSpace(b.String())
}
