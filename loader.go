package confgroup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Loader opens configuration groups from a Resolver, optionally through a Cache.
// Caching sets the default, the Optional passed to Open overrides it per call.
// Safe for concurrent use when the Resolver and Cache are.
type Loader struct {
	resolver Resolver
	cache    Cache
	caching  bool // Default for Open with InheritCaching
	logger   *slog.Logger
}

// NewLoader creates a Loader with no cache and caching disabled.
func NewLoader(resolver Resolver) *Loader {
	return &Loader{
		resolver: resolver,
		logger:   slog.Default(),
	}
}

// WithCache sets the cache consulted by Open.
func (l *Loader) WithCache(cache Cache) *Loader {
	l.cache = cache
	return l
}

// Caching sets the default used when Open receives InheritCaching. Default: false.
func (l *Loader) Caching(enabled bool) *Loader {
	l.caching = enabled
	return l
}

// WithLogger sets the logger for debug output. A nil logger restores slog.Default().
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l.logger = logger
	return l
}

// CacheKey returns the cache key under which a merged group is stored.
func CacheKey(group string) string {
	return "confgroup.Load(" + strconv.Quote(group) + ")"
}

// Merge combines sources in order. Later sources overwrite earlier ones key by key;
// nested maps are replaced, not merged. The result is never nil.
func Merge(sources ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, source := range sources {
		for key, value := range source {
			merged[key] = value
		}
	}
	return merged
}

// Load resolves all sources of group and merges them. The cache is not consulted.
// A group without sources yields an empty map. Values are normalized to plain types
// (int, float64, []any, map[string]any, ...) so a cached copy compares equal to a fresh load.
func (l *Loader) Load(ctx context.Context, group string) (map[string]any, error) {
	if strings.TrimSpace(group) == "" {
		return nil, ErrEmptyGroup
	}

	sources, err := l.resolver.Resolve(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("load group %q: %w", group, err)
	}

	l.logger.Debug("Loaded config group", "group", group, "sources", len(sources))

	return plainValues(Merge(sources...)), nil
}

// Open creates a Group. With caching enabled (after applying the loader default to an unset
// useCache) the cache is consulted first; on a miss the group is loaded and always written back.
// Errors from the resolver or cache abort the call.
func (l *Loader) Open(ctx context.Context, group string, useCache Optional[bool]) (*Group, error) {
	if strings.TrimSpace(group) == "" {
		return nil, ErrEmptyGroup
	}

	if !useCache.OrDefault(l.caching) || l.cache == nil {
		values, err := l.Load(ctx, group)
		if err != nil {
			return nil, err
		}
		return newGroup(group, values), nil
	}

	key := CacheKey(group)

	cached, err := l.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cache for group %q: %w", group, err)
	}
	if values, ok := cached.Get(); ok {
		l.logger.Debug("Config group cache hit", "group", group, "key", key)
		return newGroup(group, cloneValues(values)), nil
	}

	l.logger.Debug("Config group cache miss", "group", group, "key", key)

	values, err := l.Load(ctx, group)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Put(ctx, key, cloneValues(values)); err != nil {
		return nil, fmt.Errorf("write cache for group %q: %w", group, err)
	}

	return newGroup(group, values), nil
}

// Forget evicts the cached copy of group when the cache supports deletion.
func (l *Loader) Forget(ctx context.Context, group string) error {
	deleter, ok := l.cache.(Deleter)
	if !ok {
		return nil
	}

	if err := deleter.Delete(ctx, CacheKey(group)); err != nil {
		return fmt.Errorf("evict group %q: %w", group, err)
	}

	l.logger.Debug("Config group evicted", "group", group)
	return nil
}

// Chain returns a Resolver that concatenates the sources of each resolver in order.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(ctx context.Context, group string) ([]map[string]any, error) {
		var all []map[string]any
		for _, r := range resolvers {
			sources, err := r.Resolve(ctx, group)
			if err != nil {
				return nil, err
			}
			all = append(all, sources...)
		}
		return all, nil
	})
}
