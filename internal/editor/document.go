// Package editor implements the blog post authoring surface: an in-memory
// rich-text document, the commands that mutate it, the toolbar that drives
// those commands and the insertion dialogs for links, images and videos.
package editor

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// BlockType is the kind of a top-level document block.
type BlockType string

const (
	BlockParagraph   BlockType = "paragraph"
	BlockHeading     BlockType = "heading"
	BlockBulletItem  BlockType = "bullet_item"
	BlockOrderedItem BlockType = "ordered_item"
	BlockQuote       BlockType = "blockquote"
	BlockCode        BlockType = "code_block"
	BlockImage       BlockType = "image"
	BlockVideo       BlockType = "video"
)

// MaxHeadingLevel is the deepest heading the editor produces.
const MaxHeadingLevel = 3

// Mark is an inline formatting flag.
type Mark string

const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
	MarkCode      Mark = "code"
)

// Link is the target of a hyperlink mark.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel,omitempty"`
	Target string `json:"target,omitempty"`
}

// Marks is the formatting carried by a span of text.
type Marks struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Code      bool   `json:"code,omitempty"`
	Color     string `json:"color,omitempty"`
	Link      *Link  `json:"link,omitempty"`
}

// Has reports whether the flag mark is set.
func (m Marks) Has(mark Mark) bool {
	switch mark {
	case MarkBold:
		return m.Bold
	case MarkItalic:
		return m.Italic
	case MarkUnderline:
		return m.Underline
	case MarkCode:
		return m.Code
	}
	return false
}

// Set turns the flag mark on or off.
func (m *Marks) Set(mark Mark, on bool) {
	switch mark {
	case MarkBold:
		m.Bold = on
	case MarkItalic:
		m.Italic = on
	case MarkUnderline:
		m.Underline = on
	case MarkCode:
		m.Code = on
	}
}

func (m Marks) equal(o Marks) bool {
	return m.Bold == o.Bold && m.Italic == o.Italic && m.Underline == o.Underline &&
		m.Code == o.Code && m.Color == o.Color && linkEqual(m.Link, o.Link)
}

func linkEqual(a, b *Link) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Span is a run of text sharing the same marks.
type Span struct {
	Text  string `json:"text"`
	Marks Marks  `json:"marks"`
}

// Block is a top-level node. Text blocks carry spans; image and video
// blocks carry Src (and Alt for images).
type Block struct {
	Type  BlockType `json:"type"`
	Level int       `json:"level,omitempty"`
	Spans []Span    `json:"spans,omitempty"`
	Src   string    `json:"src,omitempty"`
	Alt   string    `json:"alt,omitempty"`
}

// IsText reports whether b holds editable text.
func (b Block) IsText() bool {
	return b.Type != BlockImage && b.Type != BlockVideo
}

// Text returns the concatenated text of b.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Len returns the length of b's text in runes.
func (b Block) Len() int {
	n := 0
	for _, s := range b.Spans {
		n += utf8.RuneCountInString(s.Text)
	}
	return n
}

// Selection addresses a rune range inside one block. Start == End is a caret.
type Selection struct {
	Block int `json:"block"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool { return s.Start == s.End }

// Document is an editable rich-text document. It is not safe for concurrent
// use; the Surface serialises access.
type Document struct {
	blocks []Block
	sel    Selection
	// stored holds marks toggled on a caret; they apply to the next insertion.
	stored *Marks
}

// NewDocument returns a document with a single empty paragraph.
func NewDocument() *Document {
	return &Document{blocks: []Block{{Type: BlockParagraph}}}
}

// Blocks returns a copy of the document's blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b
		out[i].Spans = slices.Clone(b.Spans)
	}
	return out
}

// Selection returns the current selection.
func (d *Document) Selection() Selection { return d.sel }

// Select moves the selection, clamping it into the document.
func (d *Document) Select(block, start, end int) {
	block = clamp(block, 0, len(d.blocks)-1)
	if start > end {
		start, end = end, start
	}
	n := d.blocks[block].Len()
	d.sel = Selection{Block: block, Start: clamp(start, 0, n), End: clamp(end, 0, n)}
	d.stored = nil
}

// SelectAll selects the whole current block.
func (d *Document) SelectAll() {
	d.Select(d.sel.Block, 0, d.blocks[d.sel.Block].Len())
}

// SelectedText returns the text under the selection.
func (d *Document) SelectedText() string {
	b := d.current()
	if b == nil || d.sel.Collapsed() {
		return ""
	}
	r := []rune(b.Text())
	return string(r[d.sel.Start:d.sel.End])
}

func (d *Document) current() *Block {
	if d.sel.Block < 0 || d.sel.Block >= len(d.blocks) {
		return nil
	}
	return &d.blocks[d.sel.Block]
}

// IsMarkActive reports whether mark covers the selection, or applies at the
// caret.
func (d *Document) IsMarkActive(mark Mark) bool {
	return d.marksActive(func(m Marks) bool { return m.Has(mark) })
}

// IsLinkActive reports whether the selection is inside a link.
func (d *Document) IsLinkActive() bool {
	return d.marksActive(func(m Marks) bool { return m.Link != nil })
}

// IsBlockActive reports whether the current block has type t (and, for
// headings, level).
func (d *Document) IsBlockActive(t BlockType, level int) bool {
	b := d.current()
	if b == nil || b.Type != t {
		return false
	}
	return t != BlockHeading || b.Level == level
}

// ActiveColor returns the text color at the selection start.
func (d *Document) ActiveColor() string {
	return d.marksAtSelection().Color
}

// LinkAt returns the link at the selection start, if any.
func (d *Document) LinkAt() *Link {
	if l := d.marksAtSelection().Link; l != nil {
		cp := *l
		return &cp
	}
	return nil
}

func (d *Document) marksAtSelection() Marks {
	b := d.current()
	if b == nil {
		return Marks{}
	}
	if d.sel.Collapsed() {
		if d.stored != nil {
			return *d.stored
		}
		m, _ := marksAt(b, d.sel.Start)
		return m
	}
	m, _ := marksAt(b, d.sel.Start+1)
	return m
}

func (d *Document) marksActive(pred func(Marks) bool) bool {
	b := d.current()
	if b == nil || !b.IsText() {
		return false
	}
	if d.sel.Collapsed() {
		if d.stored != nil {
			return pred(*d.stored)
		}
		m, ok := marksAt(b, d.sel.Start)
		return ok && pred(m)
	}
	covered := false
	pos := 0
	for _, s := range b.Spans {
		n := utf8.RuneCountInString(s.Text)
		if pos < d.sel.End && pos+n > d.sel.Start {
			covered = true
			if !pred(s.Marks) {
				return false
			}
		}
		pos += n
	}
	return covered
}

// marksAt returns the marks of the character before rune offset off, or of
// the first character when off is 0.
func marksAt(b *Block, off int) (Marks, bool) {
	if len(b.Spans) == 0 {
		return Marks{}, false
	}
	if off > 0 {
		off--
	}
	pos := 0
	for _, s := range b.Spans {
		n := utf8.RuneCountInString(s.Text)
		if off < pos+n {
			return s.Marks, true
		}
		pos += n
	}
	return b.Spans[len(b.Spans)-1].Marks, true
}

// cursorMarks returns the marks new text typed at the caret receives. Links
// do not extend past their end unless explicitly stored.
func (d *Document) cursorMarks() Marks {
	if d.stored != nil {
		return *d.stored
	}
	b := d.current()
	if b == nil {
		return Marks{}
	}
	m, _ := marksAt(b, d.sel.Start)
	m.Link = nil
	return m
}

// ToggleMark flips mark over the selection. On a caret the mark is stored
// for the next insertion.
func (d *Document) ToggleMark(mark Mark) {
	b := d.current()
	if b == nil || !b.IsText() || b.Type == BlockCode {
		return
	}
	on := !d.IsMarkActive(mark)
	if d.sel.Collapsed() {
		m := d.cursorMarks()
		m.Set(mark, on)
		d.stored = &m
		return
	}
	d.applyMarks(func(m *Marks) { m.Set(mark, on) })
}

// SetColor sets (or, with an empty color, clears) the text color.
func (d *Document) SetColor(color string) {
	b := d.current()
	if b == nil || !b.IsText() || b.Type == BlockCode {
		return
	}
	if d.sel.Collapsed() {
		m := d.cursorMarks()
		m.Color = color
		d.stored = &m
		return
	}
	d.applyMarks(func(m *Marks) { m.Color = color })
}

func (d *Document) applyMarks(fn func(*Marks)) {
	b := d.current()
	i, j := spanRange(b, d.sel.Start, d.sel.End)
	for k := i; k < j; k++ {
		fn(&b.Spans[k].Marks)
	}
	b.Spans = mergeSpans(b.Spans)
}

// SetBlockType converts the current block. Applying the type the block
// already has turns it back into a paragraph.
func (d *Document) SetBlockType(t BlockType, level int) {
	b := d.current()
	if b == nil || !b.IsText() {
		return
	}
	if t != BlockParagraph && d.IsBlockActive(t, level) {
		t = BlockParagraph
	}
	b.Type = t
	b.Level = 0
	if t == BlockHeading {
		b.Level = clamp(level, 1, MaxHeadingLevel)
	}
	if t == BlockCode {
		text := b.Text()
		b.Spans = nil
		if text != "" {
			b.Spans = []Span{{Text: text}}
		}
	}
}

// InsertText replaces the selection with text. Newlines split blocks.
func (d *Document) InsertText(text string) {
	if b := d.current(); b == nil {
		return
	} else if !b.IsText() {
		d.insertBlockAfter(Block{Type: BlockParagraph})
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			d.SplitBlock()
		}
		d.insertLine(line)
	}
}

func (d *Document) insertLine(text string) {
	marks := d.cursorMarks()
	d.deleteSelection()
	b := d.current()
	if b.Type == BlockCode {
		marks = Marks{}
	}
	if text == "" {
		return
	}
	i := splitAt(b, d.sel.Start)
	b.Spans = slices.Insert(b.Spans, i, Span{Text: text, Marks: marks})
	b.Spans = mergeSpans(b.Spans)
	d.sel.Start += utf8.RuneCountInString(text)
	d.sel.End = d.sel.Start
}

func (d *Document) deleteSelection() {
	if d.sel.Collapsed() {
		return
	}
	b := d.current()
	i, j := spanRange(b, d.sel.Start, d.sel.End)
	b.Spans = mergeSpans(slices.Delete(b.Spans, i, j))
	d.sel.End = d.sel.Start
}

// DeleteBackward removes the selection, or the character before the caret,
// joining with the previous block at the start of a block.
func (d *Document) DeleteBackward() {
	b := d.current()
	if b == nil {
		return
	}
	d.stored = nil
	switch {
	case !b.IsText():
		d.removeBlock(d.sel.Block)
	case !d.sel.Collapsed():
		d.deleteSelection()
	case d.sel.Start > 0:
		d.sel.Start--
		d.deleteSelection()
	case b.Type != BlockParagraph:
		b.Type = BlockParagraph
		b.Level = 0
	case d.sel.Block > 0:
		prev := &d.blocks[d.sel.Block-1]
		if !prev.IsText() {
			d.blocks = slices.Delete(d.blocks, d.sel.Block-1, d.sel.Block)
			d.sel.Block--
			return
		}
		off := prev.Len()
		prev.Spans = mergeSpans(append(prev.Spans, b.Spans...))
		d.blocks = slices.Delete(d.blocks, d.sel.Block, d.sel.Block+1)
		d.sel = Selection{Block: d.sel.Block - 1, Start: off, End: off}
	}
}

func (d *Document) removeBlock(i int) {
	d.blocks = slices.Delete(d.blocks, i, i+1)
	if len(d.blocks) == 0 {
		d.blocks = []Block{{Type: BlockParagraph}}
	}
	if i > 0 {
		i--
	}
	i = clamp(i, 0, len(d.blocks)-1)
	end := d.blocks[i].Len()
	d.sel = Selection{Block: i, Start: end, End: end}
}

// SplitBlock breaks the current block at the caret. A heading continues as a
// paragraph; Enter on an empty list item leaves the list.
func (d *Document) SplitBlock() {
	b := d.current()
	if b == nil {
		return
	}
	if !b.IsText() {
		d.insertBlockAfter(Block{Type: BlockParagraph})
		return
	}
	d.deleteSelection()
	listItem := b.Type == BlockBulletItem || b.Type == BlockOrderedItem
	if listItem && b.Len() == 0 {
		b.Type = BlockParagraph
		return
	}

	i := splitAt(b, d.sel.Start)
	tail := slices.Clone(b.Spans[i:])
	b.Spans = b.Spans[:i]

	next := Block{Type: b.Type, Level: b.Level, Spans: tail}
	if next.Type == BlockHeading {
		next.Type = BlockParagraph
		next.Level = 0
	}
	d.blocks = slices.Insert(d.blocks, d.sel.Block+1, next)
	d.sel = Selection{Block: d.sel.Block + 1}
}

func (d *Document) insertBlockAfter(b Block) {
	at := d.sel.Block + 1
	d.blocks = slices.Insert(d.blocks, at, b)
	d.sel = Selection{Block: at}
	d.stored = nil
}

// SetLink links the selection to l. On a caret, text (or the URL itself) is
// inserted as a new linked run. A non-empty text replaces the selection.
func (d *Document) SetLink(l Link, text string) {
	b := d.current()
	if b == nil || !b.IsText() || b.Type == BlockCode {
		return
	}
	if d.sel.Collapsed() || (text != "" && text != d.SelectedText()) {
		if text == "" {
			text = l.Href
		}
		marks := d.cursorMarks()
		d.deleteSelection()
		b = d.current()
		link := l
		marks.Link = &link
		i := splitAt(b, d.sel.Start)
		b.Spans = mergeSpans(slices.Insert(b.Spans, i, Span{Text: text, Marks: marks}))
		d.sel.Start += utf8.RuneCountInString(text)
		d.sel.End = d.sel.Start
		d.stored = nil
		return
	}
	link := l
	d.applyMarks(func(m *Marks) { m.Link = &link })
}

// UnsetLink removes links from the selection, or the whole link around the
// caret.
func (d *Document) UnsetLink() {
	b := d.current()
	if b == nil || !b.IsText() {
		return
	}
	if !d.sel.Collapsed() {
		d.applyMarks(func(m *Marks) { m.Link = nil })
		return
	}
	target, ok := marksAt(b, d.sel.Start)
	if !ok || target.Link == nil {
		return
	}
	// Find the linked run containing the caret.
	pos := 0
	off := d.sel.Start
	if off > 0 {
		off--
	}
	for i, s := range b.Spans {
		n := utf8.RuneCountInString(s.Text)
		if off < pos+n {
			lo, hi := i, i+1
			for lo > 0 && linkEqual(b.Spans[lo-1].Marks.Link, target.Link) {
				lo--
			}
			for hi < len(b.Spans) && linkEqual(b.Spans[hi].Marks.Link, target.Link) {
				hi++
			}
			for k := lo; k < hi; k++ {
				b.Spans[k].Marks.Link = nil
			}
			break
		}
		pos += n
	}
	b.Spans = mergeSpans(b.Spans)
}

// InsertImage adds an image block after the current block.
func (d *Document) InsertImage(src, alt string) {
	d.insertMedia(Block{Type: BlockImage, Src: src, Alt: alt})
}

// InsertVideo adds a video block after the current block.
func (d *Document) InsertVideo(src string) {
	d.insertMedia(Block{Type: BlockVideo, Src: src})
}

// insertMedia places media after the current block (or in place of an empty
// paragraph) and leaves the caret in a paragraph following it.
func (d *Document) insertMedia(m Block) {
	b := d.current()
	if b == nil {
		return
	}
	at := d.sel.Block
	if b.IsText() && b.Type == BlockParagraph && b.Len() == 0 {
		d.blocks[at] = m
	} else {
		at++
		d.blocks = slices.Insert(d.blocks, at, m)
	}
	if at == len(d.blocks)-1 || !d.blocks[at+1].IsText() {
		d.blocks = slices.Insert(d.blocks, at+1, Block{Type: BlockParagraph})
	}
	d.sel = Selection{Block: at + 1}
	d.stored = nil
}

// Text returns the plain-text projection of the document, one line per text
// block.
func (d *Document) Text() string {
	lines := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		if b.IsText() {
			lines = append(lines, b.Text())
		}
	}
	return strings.Join(lines, "\n")
}

// splitAt ensures a span boundary at rune offset off and returns the index of
// the first span starting at or after it.
func splitAt(b *Block, off int) int {
	pos := 0
	for i := range b.Spans {
		if off == pos {
			return i
		}
		n := utf8.RuneCountInString(b.Spans[i].Text)
		if off < pos+n {
			r := []rune(b.Spans[i].Text)
			right := Span{Text: string(r[off-pos:]), Marks: b.Spans[i].Marks}
			b.Spans[i].Text = string(r[:off-pos])
			b.Spans = slices.Insert(b.Spans, i+1, right)
			return i + 1
		}
		pos += n
	}
	return len(b.Spans)
}

// spanRange splits at start and end and returns the span index range [i, j)
// covering exactly that text.
func spanRange(b *Block, start, end int) (int, int) {
	i := splitAt(b, start)
	j := splitAt(b, end)
	return i, j
}

// mergeSpans drops empty spans and joins neighbours with equal marks.
func mergeSpans(spans []Span) []Span {
	out := spans[:0]
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Marks.equal(s.Marks) {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
