package confgroup

import (
	"context"
)

// Resolver finds the configuration sources for a group.
// Sources are returned from lowest to highest precedence; later sources override earlier ones.
type Resolver interface {
	// Resolve returns one map per source. A group with no sources returns an empty slice.
	Resolve(ctx context.Context, group string) ([]map[string]any, error)
}

// ResolverFunc is a function adapter for Resolver interface.
type ResolverFunc func(ctx context.Context, group string) ([]map[string]any, error)

func (f ResolverFunc) Resolve(ctx context.Context, group string) ([]map[string]any, error) {
	return f(ctx, group)
}

// Cache stores merged groups under a cache key (see CacheKey).
type Cache interface {
	// Get returns the stored values. An unset Optional means nothing is stored;
	// an empty map is a valid stored value.
	Get(ctx context.Context, key string) (Optional[map[string]any], error)

	// Put stores values under key, replacing any previous entry.
	Put(ctx context.Context, key string, values map[string]any) error
}

// Deleter is implemented by caches that can evict a single entry.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Caching modes accepted by Loader.Open.
var (
	// InheritCaching uses the loader-wide default set with Loader.Caching.
	InheritCaching = Optional[bool]{}

	// WithCaching forces the cache to be consulted and filled.
	WithCaching = Some(true)

	// WithoutCaching bypasses the cache entirely.
	WithoutCaching = Some(false)
)
