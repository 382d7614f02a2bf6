// Package cachefile persists merged configuration groups as YAML files.
//
// Each key maps to <dir>/<sha1(key)>.yaml. Entries expire after Options.Lifetime
// (60s by default) and are rewritten whole on every Put.
//
// Example:
//
//	cache := cachefile.New("/var/cache/app/config", cachefile.Options{Lifetime: 5 * time.Minute})
//	loader := confgroup.NewLoader(resolver).WithCache(cache).Caching(true)
package cachefile
