// Package confgroup loads named configuration groups from ordered sources, caches the merged
// result, and tracks whether callers changed any value afterwards.
//
// Quick Start:
//
//	loader := confgroup.NewLoader(confgroup.Chain(
//	    sourcefile.New(sourcefile.Options{Paths: []string{"system/config", "app/config"}}),
//	    sourceenv.New(sourceenv.Options{Prefix: "APP_"}),
//	)).WithCache(confgroup.NewMemoryCache()).Caching(true)
//
//	db, err := loader.Open(ctx, "database", confgroup.InheritCaching)
//	host := db.Get("host", "localhost")
//
// Merging is shallow: for each key the last source wins and nested maps are replaced whole.
// Cache entries are keyed by CacheKey and written on every miss. Mutations through Set mark
// the group as changed but are never persisted.
//
// See example_test.go for detailed usage.
package confgroup
