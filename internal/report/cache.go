package report

import (
	"context"
	"log"
	"sync"

	"github.com/sithum-sy/hireme-sub001/internal/domain"
)

// OptionFetcher resolves the distinct values for a (source, field) pair.
// Implemented by the SDK client against the field-options endpoint and by
// the query layer directly on the server side.
type OptionFetcher interface {
	FieldOptions(ctx context.Context, source, field string) ([]domain.Option, error)
}

// OptionFetcherFunc adapts a function to OptionFetcher.
type OptionFetcherFunc func(ctx context.Context, source, field string) ([]domain.Option, error)

func (f OptionFetcherFunc) FieldOptions(ctx context.Context, source, field string) ([]domain.Option, error) {
	return f(ctx, source, field)
}

type optionKey struct {
	Source string
	Field  string
}

// OptionCache memoizes field option lists per (source, field) pair for the
// lifetime of a report-editing session. Entries are never expired or evicted;
// failed fetches are not cached, so the next call retries.
type OptionCache struct {
	fetcher OptionFetcher

	mu      sync.Mutex
	entries map[optionKey][]domain.Option
}

// NewOptionCache builds a session-scoped cache over the given fetcher.
func NewOptionCache(fetcher OptionFetcher) *OptionCache {
	return &OptionCache{
		fetcher: fetcher,
		entries: map[optionKey][]domain.Option{},
	}
}

// Get returns the memoized options for the pair, fetching on first use. On
// fetch failure it returns an empty list and the error; the failure is logged
// and not stored.
func (c *OptionCache) Get(ctx context.Context, source, field string) ([]domain.Option, error) {
	key := optionKey{Source: source, Field: field}
	c.mu.Lock()
	if opts, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return opts, nil
	}
	c.mu.Unlock()

	opts, err := c.fetcher.FieldOptions(ctx, source, field)
	if err != nil {
		log.Printf("field options %s.%s: %v", source, field, err)
		return []domain.Option{}, err
	}
	if opts == nil {
		opts = []domain.Option{}
	}
	c.mu.Lock()
	// A concurrent fetch for the same key may have landed first; last write
	// wins, matching the append-only merge semantics of the session cache.
	c.entries[key] = opts
	c.mu.Unlock()
	return opts, nil
}

// Len reports the number of cached pairs.
func (c *OptionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
