package editor

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownCommand is returned for a command id the registry does not know.
	ErrUnknownCommand = errors.New("editor: unknown command")
	// ErrInvalidArgs is returned when a command's arguments cannot be used.
	ErrInvalidArgs = errors.New("editor: invalid command arguments")
)

// Args are the string arguments of a command invocation.
type Args map[string]string

// Command mutates a document.
type Command interface {
	Apply(d *Document) error
}

// CommandFunc adapts a function to Command.
type CommandFunc func(d *Document) error

// Apply calls f(d).
func (f CommandFunc) Apply(d *Document) error { return f(d) }

type commandFactory func(args Args) (Command, error)

func do(fn func(d *Document)) commandFactory {
	return func(Args) (Command, error) {
		return CommandFunc(func(d *Document) error { fn(d); return nil }), nil
	}
}

func toggle(m Mark) commandFactory {
	return do(func(d *Document) { d.ToggleMark(m) })
}

func blockType(t BlockType, level int) commandFactory {
	return do(func(d *Document) { d.SetBlockType(t, level) })
}

var registry = map[string]commandFactory{
	"bold":           toggle(MarkBold),
	"italic":         toggle(MarkItalic),
	"underline":      toggle(MarkUnderline),
	"code":           toggle(MarkCode),
	"paragraph":      blockType(BlockParagraph, 0),
	"heading1":       blockType(BlockHeading, 1),
	"heading2":       blockType(BlockHeading, 2),
	"heading3":       blockType(BlockHeading, 3),
	"bulletList":     blockType(BlockBulletItem, 0),
	"orderedList":    blockType(BlockOrderedItem, 0),
	"blockquote":     blockType(BlockQuote, 0),
	"codeBlock":      blockType(BlockCode, 0),
	"splitBlock":     do((*Document).SplitBlock),
	"deleteBackward": do((*Document).DeleteBackward),
	"selectAll":      do((*Document).SelectAll),
	"unsetLink":      do((*Document).UnsetLink),
	"color":          colorCommand,
	"insertText":     insertTextCommand,
	"select":         selectCommand,
	"setLink":        setLinkCommand,
	"insertImage":    insertImageCommand,
	"insertVideo":    insertVideoCommand,
}

// NewCommand resolves a command id and its arguments.
func NewCommand(id string, args Args) (Command, error) {
	f, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, id)
	}
	return f(args)
}

// Known reports whether id names a registered command.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

func colorCommand(args Args) (Command, error) {
	c := args["color"]
	if c != "" && !ValidColor(c) {
		return nil, fmt.Errorf("%w: color %q", ErrInvalidArgs, c)
	}
	return CommandFunc(func(d *Document) error { d.SetColor(c); return nil }), nil
}

func insertTextCommand(args Args) (Command, error) {
	text := args["text"]
	return CommandFunc(func(d *Document) error { d.InsertText(text); return nil }), nil
}

func selectCommand(args Args) (Command, error) {
	var v [3]int
	for i, key := range []string{"block", "start", "end"} {
		raw, ok := args[key]
		if !ok && key == "end" {
			v[i] = v[1]
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidArgs, key, raw)
		}
		v[i] = n
	}
	return CommandFunc(func(d *Document) error { d.Select(v[0], v[1], v[2]); return nil }), nil
}

func setLinkCommand(args Args) (Command, error) {
	href := args["href"]
	if !SafeURL(href, true) {
		return nil, fmt.Errorf("%w: href %q", ErrInvalidArgs, href)
	}
	l := Link{Href: href, Rel: DefaultLinkRel, Target: DefaultLinkTarget}
	if rel, ok := args["rel"]; ok {
		l.Rel = rel
	}
	if target, ok := args["target"]; ok {
		l.Target = target
	}
	text := args["text"]
	return CommandFunc(func(d *Document) error { d.SetLink(l, text); return nil }), nil
}

func insertImageCommand(args Args) (Command, error) {
	src := args["src"]
	if !SafeURL(src, false) {
		return nil, fmt.Errorf("%w: src %q", ErrInvalidArgs, src)
	}
	alt := args["alt"]
	return CommandFunc(func(d *Document) error { d.InsertImage(src, alt); return nil }), nil
}

func insertVideoCommand(args Args) (Command, error) {
	src := args["src"]
	if !SafeURL(src, false) {
		return nil, fmt.Errorf("%w: src %q", ErrInvalidArgs, src)
	}
	return CommandFunc(func(d *Document) error { d.InsertVideo(src); return nil }), nil
}
