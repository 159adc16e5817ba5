package editor

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	styleColor = regexp.MustCompile(`(?i)(?:^|;)\s*color\s*:\s*([^;]+)`)
	colorValue = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)
)

// ValidColor reports whether c is a color the editor accepts: a #rgb or
// #rrggbb hex value or a CSS color name.
func ValidColor(c string) bool {
	return colorValue.MatchString(c)
}

// SafeURL reports whether raw is an http(s) URL or a site-relative path.
// When contact is set, mailto: and tel: URLs are accepted as well.
func SafeURL(raw string, contact bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "mailto", "tel":
		return contact && u.Opaque != ""
	}
	return false
}

// ParseHTML builds a document from stored markup. Unknown elements are
// flattened into their text; unsafe links and colors are dropped. The caret
// is placed at the end of the document.
func ParseHTML(markup string) *Document {
	d := &Document{}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err == nil {
		p := &fragmentParser{doc: d}
		for _, n := range nodes {
			p.block(n)
		}
		p.flush()
	}
	if len(d.blocks) == 0 {
		d.blocks = []Block{{Type: BlockParagraph}}
	}
	last := len(d.blocks) - 1
	end := d.blocks[last].Len()
	d.sel = Selection{Block: last, Start: end, End: end}
	return d
}

type fragmentParser struct {
	doc *Document
	// pending collects top-level inline content until a block boundary.
	pending []Span
	media   []Block
}

func (p *fragmentParser) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.pending = append(p.pending, Span{Text: n.Data})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer:
		p.flush()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c)
		}
		p.flush()
	case atom.P:
		p.flush()
		p.textBlock(Block{Type: BlockParagraph}, n)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		p.flush()
		level, _ := strconv.Atoi(n.Data[1:])
		p.textBlock(Block{Type: BlockHeading, Level: min(level, MaxHeadingLevel)}, n)
	case atom.Ul, atom.Ol:
		p.flush()
		t := BlockBulletItem
		if n.DataAtom == atom.Ol {
			t = BlockOrderedItem
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				p.textBlock(Block{Type: t}, c)
			}
		}
	case atom.Blockquote:
		p.flush()
		p.textBlock(Block{Type: BlockQuote}, n)
	case atom.Pre:
		p.flush()
		b := Block{Type: BlockCode}
		if text := textContent(n); text != "" {
			b.Spans = []Span{{Text: strings.TrimSuffix(text, "\n")}}
		}
		p.doc.blocks = append(p.doc.blocks, b)
	case atom.Img:
		p.flush()
		if b, ok := imageBlock(n); ok {
			p.doc.blocks = append(p.doc.blocks, b)
		}
	case atom.Video, atom.Iframe:
		p.flush()
		if b, ok := videoBlock(n); ok {
			p.doc.blocks = append(p.doc.blocks, b)
		}
	case atom.Br, atom.Hr:
		p.flush()
	case atom.Script, atom.Style:
	default:
		collectInline(n, Marks{}, &p.pending, &p.media)
	}
}

// flush emits pending top-level inline content as a paragraph.
func (p *fragmentParser) flush() {
	spans := cleanSpans(p.pending)
	p.pending = nil
	if len(spans) > 0 {
		p.doc.blocks = append(p.doc.blocks, Block{Type: BlockParagraph, Spans: spans})
	}
	p.doc.blocks = append(p.doc.blocks, p.media...)
	p.media = nil
}

func (p *fragmentParser) textBlock(b Block, n *html.Node) {
	var spans []Span
	var media []Block
	collectChildren(n, Marks{}, &spans, &media)
	b.Spans = cleanSpans(spans)
	if len(b.Spans) > 0 || len(media) == 0 {
		p.doc.blocks = append(p.doc.blocks, b)
	}
	p.doc.blocks = append(p.doc.blocks, media...)
}

func collectChildren(n *html.Node, m Marks, spans *[]Span, media *[]Block) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectInline(c, m, spans, media)
	}
}

func collectInline(n *html.Node, m Marks, spans *[]Span, media *[]Block) {
	switch n.Type {
	case html.TextNode:
		*spans = append(*spans, Span{Text: n.Data, Marks: m})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		m.Bold = true
	case atom.Em, atom.I:
		m.Italic = true
	case atom.U:
		m.Underline = true
	case atom.Code:
		m.Code = true
	case atom.A:
		if href := attr(n, "href"); SafeURL(href, true) {
			m.Link = &Link{Href: href, Rel: attr(n, "rel"), Target: attr(n, "target")}
		}
	case atom.Span, atom.Font:
		if c := colorOf(n); c != "" {
			m.Color = c
		}
	case atom.Br:
		*spans = append(*spans, Span{Text: " ", Marks: m})
		return
	case atom.Img:
		if b, ok := imageBlock(n); ok {
			*media = append(*media, b)
		}
		return
	case atom.Video, atom.Iframe:
		if b, ok := videoBlock(n); ok {
			*media = append(*media, b)
		}
		return
	case atom.Script, atom.Style:
		return
	case atom.P, atom.Li, atom.Div:
		*spans = append(*spans, Span{Text: " "})
		defer func() { *spans = append(*spans, Span{Text: " "}) }()
	}
	collectChildren(n, m, spans, media)
}

// cleanSpans collapses HTML whitespace, trims the block edges and merges
// equal neighbours.
func cleanSpans(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	prevSpace := true
	for _, s := range spans {
		text := spaceRun.ReplaceAllString(s.Text, " ")
		if prevSpace {
			text = strings.TrimLeft(text, " ")
		}
		if text == "" {
			continue
		}
		prevSpace = strings.HasSuffix(text, " ")
		out = append(out, Span{Text: text, Marks: s.Marks})
	}
	for len(out) > 0 {
		last := &out[len(out)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		out = out[:len(out)-1]
	}
	return mergeSpans(out)
}

func imageBlock(n *html.Node) (Block, bool) {
	src := attr(n, "src")
	if !SafeURL(src, false) {
		return Block{}, false
	}
	return Block{Type: BlockImage, Src: src, Alt: attr(n, "alt")}, true
}

func videoBlock(n *html.Node) (Block, bool) {
	src := attr(n, "src")
	if src == "" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Source {
				src = attr(c, "src")
				break
			}
		}
	}
	if !SafeURL(src, false) {
		return Block{}, false
	}
	return Block{Type: BlockVideo, Src: src}, true
}

func colorOf(n *html.Node) string {
	c := attr(n, "color")
	if match := styleColor.FindStringSubmatch(attr(n, "style")); match != nil {
		c = match[1]
	}
	c = strings.TrimSpace(c)
	if !ValidColor(c) {
		return ""
	}
	return c
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// HTML renders the document to markup. Consecutive list items share one
// list element.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	for _, n := range d.nodes() {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}

func (d *Document) nodes() []*html.Node {
	var out []*html.Node
	var list *html.Node
	var listType BlockType
	for _, b := range d.blocks {
		if b.Type == BlockBulletItem || b.Type == BlockOrderedItem {
			if list == nil || listType != b.Type {
				tag := "ul"
				if b.Type == BlockOrderedItem {
					tag = "ol"
				}
				list = element(tag)
				listType = b.Type
				out = append(out, list)
			}
			li := element("li")
			appendSpans(li, b.Spans)
			list.AppendChild(li)
			continue
		}
		list = nil
		out = append(out, blockNode(b))
	}
	return out
}

func blockNode(b Block) *html.Node {
	switch b.Type {
	case BlockHeading:
		n := element("h" + strconv.Itoa(clamp(b.Level, 1, MaxHeadingLevel)))
		appendSpans(n, b.Spans)
		return n
	case BlockQuote:
		n := element("blockquote")
		appendSpans(n, b.Spans)
		return n
	case BlockCode:
		pre := element("pre")
		code := element("code")
		code.AppendChild(&html.Node{Type: html.TextNode, Data: b.Text()})
		pre.AppendChild(code)
		return pre
	case BlockImage:
		return element("img",
			html.Attribute{Key: "src", Val: b.Src},
			html.Attribute{Key: "alt", Val: b.Alt})
	case BlockVideo:
		return element("video",
			html.Attribute{Key: "src", Val: b.Src},
			html.Attribute{Key: "controls"})
	default:
		n := element("p")
		appendSpans(n, b.Spans)
		return n
	}
}

// appendSpans renders spans into parent, wrapping runs that share a link in
// a single anchor.
func appendSpans(parent *html.Node, spans []Span) {
	for i := 0; i < len(spans); {
		j := i + 1
		for j < len(spans) && linkEqual(spans[j].Marks.Link, spans[i].Marks.Link) {
			j++
		}
		target := parent
		if l := spans[i].Marks.Link; l != nil {
			attrs := []html.Attribute{{Key: "href", Val: l.Href}}
			if l.Rel != "" {
				attrs = append(attrs, html.Attribute{Key: "rel", Val: l.Rel})
			}
			if l.Target != "" {
				attrs = append(attrs, html.Attribute{Key: "target", Val: l.Target})
			}
			a := element("a", attrs...)
			parent.AppendChild(a)
			target = a
		}
		for _, s := range spans[i:j] {
			target.AppendChild(markedText(s))
		}
		i = j
	}
}

func markedText(s Span) *html.Node {
	node := &html.Node{Type: html.TextNode, Data: s.Text}
	wrap := func(tag string, attrs ...html.Attribute) {
		e := element(tag, attrs...)
		e.AppendChild(node)
		node = e
	}
	m := s.Marks
	if m.Code {
		wrap("code")
	}
	if m.Underline {
		wrap("u")
	}
	if m.Italic {
		wrap("em")
	}
	if m.Bold {
		wrap("strong")
	}
	if m.Color != "" {
		wrap("span", html.Attribute{Key: "style", Val: "color: " + m.Color})
	}
	return node
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}
