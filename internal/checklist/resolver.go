package checklist

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultCheckInterval bounds how often the resolver re-reads the document.
const DefaultCheckInterval = time.Second

// Resolver resolves the current step from a checklist file, re-reading the
// file at most once per check interval and reparsing only when the content
// actually changed. Cached results may therefore be stale by up to one
// interval; this is an I/O debounce, not a correctness mechanism.
//
// Safe for concurrent use.
type Resolver struct {
	path     string
	interval time.Duration
	now      func() time.Time
	readFile func(string) ([]byte, error)

	mu          sync.Mutex
	lastCheck   time.Time
	lastContent string
	lastIndex   Index
	lastResult  []string
}

// NewResolver creates a resolver for the given checklist file.
// A non-positive interval falls back to DefaultCheckInterval.
func NewResolver(path string, interval time.Duration) *Resolver {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Resolver{
		path:     path,
		interval: interval,
		now:      time.Now,
		readFile: os.ReadFile,
	}
}

// Current returns the resolved current step path, nil when no step
// qualifies. Between checks it returns the cached result. A read failure
// after at least one good read retains the previous result and reports the
// error so the caller can log and continue.
func (r *Resolver) Current() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.lastCheck.IsZero() && now.Sub(r.lastCheck) < r.interval {
		return r.lastResult, nil
	}
	r.lastCheck = now

	data, err := r.readFile(r.path)
	if err != nil {
		return r.lastResult, fmt.Errorf("read checklist %s: %w", r.path, err)
	}

	content := string(data)
	if content == r.lastContent {
		return r.lastResult, nil
	}

	r.lastContent = content
	r.lastIndex = Parse(content)
	r.lastResult = r.lastIndex.Current()
	return r.lastResult, nil
}

// Index returns the index from the most recent successful parse.
func (r *Resolver) Index() Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastIndex
}

// Invalidate clears the interval gate so the next Current call re-reads the
// file immediately. Used by the file watcher when a write event arrives.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.lastCheck = time.Time{}
	r.mu.Unlock()
}
