package warehouse

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// LOADER — TTL-bounded memoization around the warehouse fetch
// ============================================================================
// The fetch is the only expensive operation in the system. Concurrent
// callers inside the staleness window observe the same cached pair;
// Invalidate clears it and forces the next Load to block on a fresh fetch.
// A failed fetch is never cached — the load cycle just aborts.
// ============================================================================

// DefaultTTL matches the dashboard's hourly refresh.
const DefaultTTL = time.Hour

// Fetcher produces the two dataset tables. *Client implements it; tests
// and the CSV fixture mode supply their own.
type Fetcher interface {
	FetchDatasets(ctx context.Context) (people, sessions *engine.Table, err error)
}

// Datasets is the loaded pair. Tables are immutable once loaded; callers
// filter and project through views, never in place.
type Datasets struct {
	People   *engine.Table
	Sessions *engine.Table
	LoadedAt time.Time
}

// Loader memoizes a Fetcher's result for a bounded staleness window.
type Loader struct {
	fetcher Fetcher
	ttl     time.Duration

	mu        sync.Mutex
	cached    *Datasets
	fetchedAt time.Time

	now func() time.Time // test seam
}

// NewLoader wraps a fetcher with a TTL cache. A non-positive ttl falls
// back to DefaultTTL.
func NewLoader(f Fetcher, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{fetcher: f, ttl: ttl, now: time.Now}
}

// Load returns the cached datasets, fetching first if the cache is empty
// or stale. Concurrent callers during a fetch block and then share the
// same result.
func (l *Loader) Load(ctx context.Context) (*Datasets, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && l.now().Sub(l.fetchedAt) < l.ttl {
		return l.cached, nil
	}

	people, sessions, err := l.fetcher.FetchDatasets(ctx)
	if err != nil {
		return nil, err
	}

	loadedAt := l.now()
	l.cached = &Datasets{People: people, Sessions: sessions, LoadedAt: loadedAt}
	l.fetchedAt = loadedAt

	log.Printf("warehouse: loaded %d users, %d sessions", people.Len(), sessions.Len())
	return l.cached, nil
}

// Invalidate clears the cache. The next Load blocks on a fresh fetch.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
	log.Printf("warehouse: cache invalidated")
}
