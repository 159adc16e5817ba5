package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/epropulse/epropulse/internal/debounce"
	"github.com/epropulse/epropulse/internal/seo"
)

// State is the lifecycle state of a Surface.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateModalOpen     State = "modal_open"
	StateClosed        State = "closed"
)

// Default debounce delays.
const (
	DefaultSEODelay    = 400 * time.Millisecond
	DefaultChangeDelay = 150 * time.Millisecond
)

// ErrClosed is returned by operations on a closed Surface.
var ErrClosed = errors.New("editor: surface closed")

// Modal field names.
const (
	FieldURL    = "url"
	FieldText   = "text"
	FieldAlt    = "alt"
	FieldRel    = "rel"
	FieldTarget = "target"
)

// ModalView is a snapshot of the open dialog.
type ModalView struct {
	Kind       ModalKind         `json:"kind"`
	Fields     map[string]string `json:"fields"`
	CanConfirm bool              `json:"can_confirm"`
}

// Options configures a Surface.
type Options struct {
	SEODelay    time.Duration
	ChangeDelay time.Duration
	Analyzer    *seo.Analyzer
	Toolbar     []ToolbarGroup
	// OnStats receives the statistics of the document after SEO quiescence.
	OnStats func(seo.Stats)
	// OnChange receives the serialised document after edit quiescence.
	OnChange func(markup string)
	Logger   *slog.Logger
}

type snapshot struct {
	markup string
	text   string
}

// Surface is one editing session: a document, the toolbar that drives it and
// at most one open insertion dialog. Safe for concurrent use.
type Surface struct {
	toolbar  []ToolbarGroup
	analyzer *seo.Analyzer
	onStats  func(seo.Stats)
	onChange func(string)
	log      *slog.Logger

	seoTimer    *debounce.Debouncer[snapshot]
	changeTimer *debounce.Debouncer[string]

	mu     sync.Mutex
	state  State
	doc    *Document
	modal  *ModalView
	stats  seo.Stats
	closed bool
}

// NewSurface returns an uninitialized surface.
func NewSurface(opts Options) *Surface {
	if opts.SEODelay <= 0 {
		opts.SEODelay = DefaultSEODelay
	}
	if opts.ChangeDelay <= 0 {
		opts.ChangeDelay = DefaultChangeDelay
	}
	if opts.Analyzer == nil {
		opts.Analyzer = seo.NewAnalyzer(seo.DefaultCacheEntries)
	}
	if opts.Toolbar == nil {
		opts.Toolbar = DefaultToolbar()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Surface{
		toolbar:  opts.Toolbar,
		analyzer: opts.Analyzer,
		onStats:  opts.OnStats,
		onChange: opts.OnChange,
		log:      opts.Logger,
		state:    StateUninitialized,
	}
	s.seoTimer = debounce.New(opts.SEODelay, s.analyze)
	s.changeTimer = debounce.New(opts.ChangeDelay, s.persist)
	return s
}

// Initialize loads content and makes the surface ready. Stats are computed
// for the initial content; OnChange is not called.
func (s *Surface) Initialize(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.doc = ParseHTML(content)
	s.modal = nil
	s.state = StateReady
	s.seoTimer.Call(snapshot{markup: s.doc.HTML(), text: s.doc.Text()})
	return nil
}

// State returns the current lifecycle state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invoke runs a toolbar button or a command by id. Buttons bound to a modal
// open it. Invocations before Initialize are no-ops.
func (s *Surface) Invoke(id string, args Args) error {
	if b, ok := findButton(s.toolbar, id); ok {
		if b.Modal != "" {
			_, err := s.OpenModal(b.Modal)
			return err
		}
		id = b.Command
		if args == nil {
			args = b.Args
		}
	}
	cmd, err := NewCommand(id, args)
	if err != nil {
		return err
	}
	return s.apply(cmd)
}

func (s *Surface) apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.doc == nil {
		return nil
	}
	before := s.doc.HTML()
	if err := cmd.Apply(s.doc); err != nil {
		return err
	}
	s.changed(before)
	return nil
}

// changed schedules analysis and persistence if the markup moved away from
// before. Must be called with s.mu held.
func (s *Surface) changed(before string) {
	markup := s.doc.HTML()
	if markup == before {
		return
	}
	s.seoTimer.Call(snapshot{markup: markup, text: s.doc.Text()})
	s.changeTimer.Call(markup)
}

func (s *Surface) analyze(snap snapshot) {
	st := s.analyzer.Analyze(snap.markup, snap.text)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stats = st
	s.mu.Unlock()
	if s.onStats != nil {
		s.onStats(st)
	}
}

func (s *Surface) persist(markup string) {
	if s.onChange != nil {
		s.onChange(markup)
	}
}

// OpenModal opens the dialog of kind, replacing any open one. Link dialogs
// are prefilled from the selection. It reports whether a dialog was opened.
func (s *Surface) OpenModal(kind ModalKind) (bool, error) {
	switch kind {
	case ModalLink, ModalImage, ModalVideo:
	default:
		return false, fmt.Errorf("%w: modal %q", ErrInvalidArgs, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if s.doc == nil {
		return false, nil
	}
	fields := map[string]string{}
	if kind == ModalLink {
		fields[FieldText] = s.doc.SelectedText()
		if l := s.doc.LinkAt(); l != nil {
			fields[FieldURL] = l.Href
		}
	}
	s.modal = &ModalView{Kind: kind, Fields: fields}
	s.state = StateModalOpen
	return true, nil
}

// SetModalField updates one field of the open dialog.
func (s *Surface) SetModalField(name, value string) bool {
	return s.SetModalFields(map[string]string{name: value})
}

// SetModalFields merges fields into the open dialog. It reports false when
// no dialog is open.
func (s *Surface) SetModalFields(fields map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == nil {
		return false
	}
	maps.Copy(s.modal.Fields, fields)
	return true
}

// CanConfirm reports whether the open dialog holds a valid payload.
func (s *Surface) CanConfirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal != nil && validateModal(s.modal.Kind, s.modal.Fields) == nil
}

// Confirm validates the open dialog and applies it. An invalid payload
// leaves the document untouched and the dialog open.
func (s *Surface) Confirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == nil || s.doc == nil {
		return false
	}
	if err := validateModal(s.modal.Kind, s.modal.Fields); err != nil {
		s.log.Debug("modal payload rejected", "kind", s.modal.Kind, "error", err)
		return false
	}

	f := s.modal.Fields
	u := strings.TrimSpace(f[FieldURL])
	before := s.doc.HTML()
	switch s.modal.Kind {
	case ModalLink:
		l := Link{Href: u, Rel: DefaultLinkRel, Target: DefaultLinkTarget}
		if rel, ok := f[FieldRel]; ok {
			l.Rel = rel
		}
		if target, ok := f[FieldTarget]; ok {
			l.Target = target
		}
		s.doc.SetLink(l, strings.TrimSpace(f[FieldText]))
	case ModalImage:
		s.doc.InsertImage(u, strings.TrimSpace(f[FieldAlt]))
	case ModalVideo:
		s.doc.InsertVideo(u)
	}
	s.modal = nil
	s.state = StateReady
	s.changed(before)
	return true
}

// Cancel closes the open dialog without touching the document.
func (s *Surface) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == nil {
		return
	}
	s.modal = nil
	s.state = StateReady
}

// ClickOutside dismisses the open dialog.
func (s *Surface) ClickOutside() { s.Cancel() }

// HandleKey processes a keyboard event. Escape cancels and Enter confirms
// the open dialog. Without a dialog, Mod-b, Mod-i, Mod-u and Mod-k are
// formatting shortcuts. It reports whether the key was handled.
func (s *Surface) HandleKey(key string) (bool, error) {
	if s.modalOpen() {
		switch key {
		case "Escape":
			s.Cancel()
			return true, nil
		case "Enter":
			return s.Confirm(), nil
		}
		return false, nil
	}
	switch key {
	case "Mod-b":
		return true, s.Invoke("bold", nil)
	case "Mod-i":
		return true, s.Invoke("italic", nil)
	case "Mod-u":
		return true, s.Invoke("underline", nil)
	case "Mod-k":
		return s.OpenModal(ModalLink)
	case "Enter":
		return true, s.Invoke("splitBlock", nil)
	case "Backspace":
		return true, s.Invoke("deleteBackward", nil)
	}
	return false, nil
}

func (s *Surface) modalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modal != nil
}

// Modal returns the open dialog, or nil.
func (s *Surface) Modal() *ModalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal == nil {
		return nil
	}
	return &ModalView{
		Kind:       s.modal.Kind,
		Fields:     maps.Clone(s.modal.Fields),
		CanConfirm: validateModal(s.modal.Kind, s.modal.Fields) == nil,
	}
}

// HTML returns the serialised document.
func (s *Surface) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.HTML()
}

// Text returns the plain-text projection of the document.
func (s *Surface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.Text()
}

// Selection returns the document selection.
func (s *Surface) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Selection{}
	}
	return s.doc.Selection()
}

// Stats returns the most recently computed statistics.
func (s *Surface) Stats() seo.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Toolbar returns the toolbar with each button's active state.
func (s *Surface) Toolbar() []GroupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toolbarState(s.toolbar, s.doc)
}

// FlushChanges delivers a pending OnChange immediately.
func (s *Surface) FlushChanges() bool {
	return s.changeTimer.Flush()
}

// Close stops both timers, dropping pending work. It is idempotent.
func (s *Surface) Close() {
	s.mu.Lock()
	s.closed = true
	s.modal = nil
	s.state = StateClosed
	s.mu.Unlock()

	s.seoTimer.Stop()
	s.changeTimer.Stop()
}

func validateModal(kind ModalKind, fields map[string]string) error {
	contact := kind == ModalLink
	return validation.Validate(strings.TrimSpace(fields[FieldURL]),
		validation.Required.Error("l'URL est obligatoire"),
		validation.By(func(v any) error {
			if !SafeURL(v.(string), contact) {
				return errors.New("l'URL doit commencer par http(s):// ou /")
			}
			return nil
		}),
	)
}
