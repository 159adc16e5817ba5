package seo

import (
	"sync"

	"github.com/epropulse/epropulse/internal/checksum"
)

// DefaultCacheEntries bounds an Analyzer's memo when no size is given.
const DefaultCacheEntries = 256

// Analyzer memoizes Analyze by a SHA-256 of its inputs. Entries are evicted
// oldest first once the memo is full. Safe for concurrent use.
type Analyzer struct {
	max     int
	observe func(cached bool)

	mu    sync.Mutex
	memo  map[string]Stats
	order []string
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithObserver registers a hook called after every analysis with whether the
// result came from the memo.
func WithObserver(fn func(cached bool)) AnalyzerOption {
	return func(a *Analyzer) { a.observe = fn }
}

// NewAnalyzer creates an Analyzer keeping at most maxEntries results.
func NewAnalyzer(maxEntries int, opts ...AnalyzerOption) *Analyzer {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	a := &Analyzer{
		max:  maxEntries,
		memo: make(map[string]Stats, maxEntries),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the Stats for markup and plainText.
func (a *Analyzer) Analyze(markup, plainText string) Stats {
	key := checksum.Key(markup, plainText)

	a.mu.Lock()
	if st, ok := a.memo[key]; ok {
		a.mu.Unlock()
		a.notify(true)
		return st
	}
	a.mu.Unlock()

	st := Analyze(markup, plainText)

	a.mu.Lock()
	if _, ok := a.memo[key]; !ok {
		if len(a.order) >= a.max {
			oldest := a.order[0]
			a.order = a.order[1:]
			delete(a.memo, oldest)
		}
		a.memo[key] = st
		a.order = append(a.order, key)
	}
	a.mu.Unlock()

	a.notify(false)
	return st
}

// Len returns the number of memoized results.
func (a *Analyzer) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.memo)
}

func (a *Analyzer) notify(cached bool) {
	if a.observe != nil {
		a.observe(cached)
	}
}
