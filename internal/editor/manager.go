package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/seo"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

// Hooks connect sessions to persistence and notification. Every field is
// optional.
type Hooks struct {
	// Save persists the markup of the session's post.
	Save func(ctx context.Context, postID, markup string) error
	// Stats is called after each SEO analysis of a session.
	Stats func(sessionID string, st seo.Stats)
	// Saved is called after each persistence attempt.
	Saved func(sessionID, postID string, err error)
	// Sessions is called with the number of open sessions whenever it
	// changes.
	Sessions func(open int)
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	TTL         time.Duration
	SEODelay    time.Duration
	ChangeDelay time.Duration
	Analyzer    *seo.Analyzer
	Hooks       Hooks
	Logger      *slog.Logger
}

// Session is one authoring session owned by an admin.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	PostID    string    `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Surface   *Surface  `json:"-"`

	mu      sync.Mutex
	touched time.Time
	notice  string
}

// Notice returns the last persistence error message, or "".
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) setNotice(n string) {
	s.mu.Lock()
	s.notice = n
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Manager tracks open authoring sessions and expires idle ones.
type Manager struct {
	cfg ManagerConfig
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty Manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = seo.NewAnalyzer(seo.DefaultCacheEntries)
	}
	return &Manager{cfg: cfg, now: time.Now, sessions: make(map[string]*Session)}
}

// Open starts a session editing content. postID may be empty for a draft
// that is not persisted yet.
func (m *Manager) Open(ownerID, postID, content string) (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	now := m.now()
	sess := &Session{ID: "eds_" + id, OwnerID: ownerID, PostID: postID, CreatedAt: now, touched: now}
	log := m.cfg.Logger.With("session", sess.ID, "post", postID)

	sess.Surface = NewSurface(Options{
		SEODelay:    m.cfg.SEODelay,
		ChangeDelay: m.cfg.ChangeDelay,
		Analyzer:    m.cfg.Analyzer,
		Logger:      log,
		OnStats: func(st seo.Stats) {
			if m.cfg.Hooks.Stats != nil {
				m.cfg.Hooks.Stats(sess.ID, st)
			}
		},
		OnChange: func(markup string) { m.save(sess, log, markup) },
	})
	if err := sess.Surface.Initialize(content); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	m.reportCount()
	log.Info("editor session opened")
	return sess, nil
}

func (m *Manager) save(sess *Session, log *slog.Logger, markup string) {
	if sess.PostID == "" || m.cfg.Hooks.Save == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := m.cfg.Hooks.Save(ctx, sess.PostID, markup)
	if err != nil {
		log.Error("save post content", "error", err)
		sess.setNotice("Enregistrement impossible : " + err.Error())
	} else {
		sess.setNotice("")
	}
	if m.cfg.Hooks.Saved != nil {
		m.cfg.Hooks.Saved(sess.ID, sess.PostID, err)
	}
}

// Get returns the session id owned by ownerID and marks it used.
func (m *Manager) Get(id, ownerID string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || sess.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	sess.touch(m.now())
	return sess, nil
}

// Close ends a session, delivering its pending save first.
func (m *Manager) Close(id, ownerID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok || sess.OwnerID != ownerID {
		m.mu.Unlock()
		return apperr.ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	m.shutdown(sess)
	return nil
}

func (m *Manager) shutdown(sess *Session) {
	sess.Surface.FlushChanges()
	sess.Surface.Close()
	m.reportCount()
	m.cfg.Logger.Info("editor session closed", "session", sess.ID)
}

func (m *Manager) reportCount() {
	if m.cfg.Hooks.Sessions != nil {
		m.cfg.Hooks.Sessions(m.Len())
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were closed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.TTL)
	var expired []*Session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		m.shutdown(sess)
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.cfg.Logger.Info("expired editor sessions", "count", n)
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		all = append(all, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, sess := range all {
		m.shutdown(sess)
	}
}
