package confgroup

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpGroup.
type dumpConfig struct {
	asJSON bool                // Output as JSON instead of text format
	indent string              // Indentation for JSON output (default: "  ")
	redact map[string]struct{} // Keys whose values are hidden
}

// AsJSON outputs the group as a JSON object instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "). An empty string produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithRedactKeys replaces the values of the given keys with "***redacted***".
func WithRedactKeys(keys ...string) DumpOption {
	return func(cfg *dumpConfig) {
		for _, k := range keys {
			cfg.redact[k] = struct{}{}
		}
	}
}

// DumpGroup writes the current values of g, sorted by key.
// Text format is one "key: value" line per entry; nested values are rendered as JSON.
func DumpGroup(w io.Writer, g *Group, opts ...DumpOption) error {
	if g == nil {
		return fmt.Errorf("group is nil")
	}

	config := dumpConfig{
		indent: "  ",
		redact: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(&config)
	}

	values := g.AsMap()
	for k := range config.redact {
		if _, ok := values[k]; ok {
			values[k] = redacted
		}
	}

	if config.asJSON {
		return dumpAsJSON(w, values, config)
	}
	return dumpAsText(w, g.Keys(), values)
}

// dumpAsText outputs values in text format (key: value).
func dumpAsText(w io.Writer, keys []string, values map[string]any) error {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, formatValue(values[k]))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// dumpAsJSON outputs values as a JSON object.
func dumpAsJSON(w io.Writer, values map[string]any, config dumpConfig) error {
	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(values, "", config.indent)
	} else {
		data, err = json.Marshal(values)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// formatValue renders a single value for text output.
func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return typed
	case map[string]any, []any:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
