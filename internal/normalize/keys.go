package normalize

import (
	"strings"
)

// ToLowerDotPath normalizes a configuration key to a lowercase dot-separated path.
// Double underscores (__) are treated as level separators and converted to dots.
// Single underscores within a level are preserved.
// Examples:
//   - "FOO__BAR" → "foo.bar"
//   - "DB_MAX_CONNECTIONS" → "db_max_connections"
//   - "API__RATE_LIMIT" → "api.rate_limit"
func ToLowerDotPath(key string) string {
	normalized := strings.ReplaceAll(key, "__", ".")
	return strings.ToLower(normalized)
}

var envTokenReplacer = strings.NewReplacer("/", "_", ".", "_", "-", "_")

// EnvToken converts a group name into the form used inside environment variable names.
// Path separators, dots and dashes become underscores; the result is uppercase.
// Examples:
//   - "database" → "DATABASE"
//   - "cache/redis" → "CACHE_REDIS"
//   - "rate-limit" → "RATE_LIMIT"
func EnvToken(group string) string {
	return strings.ToUpper(envTokenReplacer.Replace(group))
}
