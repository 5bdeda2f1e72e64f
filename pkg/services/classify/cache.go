package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// GroupResolver looks a group's display name up in the directory.
type GroupResolver func(ctx context.Context, id string) (string, error)

// GroupNameCache memoizes group-name lookups for the duration of a run.
// Each id is resolved at most once, even under concurrent misses: callers
// racing on the same id share one directory call. Failed lookups are cached
// as a placeholder so a broken group id costs at most one call per run.
type GroupNameCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	resolve GroupResolver
}

type cacheEntry struct {
	once sync.Once
	name string
}

func NewGroupNameCache(resolve GroupResolver) *GroupNameCache {
	return &GroupNameCache{
		entries: make(map[string]*cacheEntry),
		resolve: resolve,
	}
}

func (c *GroupNameCache) Resolve(ctx context.Context, id string) string {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if !ok {
		entry = &cacheEntry{}
		c.entries[id] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		name, err := c.resolve(ctx, id)
		if err != nil || name == "" {
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("group", id).Msg("group name lookup failed")
			}
			name = UnknownGroupName(id)
		}
		entry.name = name
	})
	return entry.name
}

// Len reports how many group ids have been resolved so far.
func (c *GroupNameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func UnknownGroupName(id string) string {
	return fmt.Sprintf("Unknown Group: %s", id)
}
