package sourceenv

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Azhovan/confgroup"
	"github.com/Azhovan/confgroup/internal/normalize"
)

// Options configures environment variable resolver behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before matching the group).
	// Empty = the variable name starts with the group token.
	Prefix string

	// CaseSensitive controls prefix and group matching (default: false).
	// Keys are always normalized to lowercase after the group is stripped.
	CaseSensitive bool
}

type envResolver struct {
	opts Options
}

// New creates a resolver reading <Prefix><GROUP>__<KEY> environment variables.
func New(opts Options) confgroup.Resolver {
	return &envResolver{opts: opts}
}

// Resolve returns a single source holding the group's variables, or no sources when none match.
// Values are strings.
func (e *envResolver) Resolve(ctx context.Context, group string) ([]map[string]any, error) {
	marker := e.opts.Prefix + normalize.EnvToken(group) + "__"
	result := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		name := parts[0]
		value := parts[1]

		var key string
		var ok bool
		if e.opts.CaseSensitive {
			key, ok = strings.CutPrefix(name, marker)
		} else {
			key, ok = cutPrefixFold(name, marker)
		}
		if !ok || key == "" {
			continue
		}

		// Normalize: POOL__MAX → pool.max
		result[normalize.ToLowerDotPath(key)] = value
	}

	if len(result) == 0 {
		return nil, nil
	}
	return []map[string]any{result}, nil
}

// cutPrefixFold is strings.CutPrefix under Unicode case folding. It walks runes,
// so a prefix whose other case has a different byte length still cuts at the right place.
func cutPrefixFold(s, prefix string) (string, bool) {
	rest := s
	for _, want := range prefix {
		got, size := utf8.DecodeRuneInString(rest)
		if size == 0 || !strings.EqualFold(string(got), string(want)) {
			return s, false
		}
		rest = rest[size:]
	}
	return rest, true
}
