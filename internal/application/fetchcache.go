package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/profilesync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SourceFetcher = (*FetchCache)(nil)

// FetchCache routes each locator to the first registered fetcher that
// recognizes it and caches successful fetches for the lifetime of one run,
// so multiple directives referencing the same (locator, branch) incur a
// single fetch. Failed fetches are not cached; they abort the run anyway.
type FetchCache struct {
	mu       sync.Mutex
	fetchers []driven.SourceFetcher
	dirs     map[fetchKey]string
}

type fetchKey struct {
	locator string
	branch  string
}

// NewFetchCache creates a FetchCache over the given fetchers. Registration
// order is consultation order.
func NewFetchCache(fetchers ...driven.SourceFetcher) *FetchCache {
	return &FetchCache{
		fetchers: fetchers,
		dirs:     make(map[fetchKey]string),
	}
}

// CanHandle reports whether any registered fetcher recognizes the locator.
func (c *FetchCache) CanHandle(locator string) bool {
	for _, f := range c.fetchers {
		if f.CanHandle(locator) {
			return true
		}
	}
	return false
}

// Fetch returns the cached working tree for (locator, branch) or delegates
// to the first fetcher that recognizes the locator.
func (c *FetchCache) Fetch(ctx context.Context, locator, branch string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fetchKey{locator: locator, branch: branch}
	if dir, ok := c.dirs[key]; ok {
		slog.Debug("fetch cache hit", "locator", locator, "branch", branch)
		return dir, nil
	}

	for _, f := range c.fetchers {
		if !f.CanHandle(locator) {
			continue
		}
		dir, err := f.Fetch(ctx, locator, branch)
		if err != nil {
			return "", err
		}
		c.dirs[key] = dir
		return dir, nil
	}

	return "", &driven.FetchError{Locator: locator, Branch: branch, Err: driven.ErrUnsupportedLocator}
}
