package sourcefile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azhovan/confgroup"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Extensions lists the recognized file extensions in the order they are tried within one directory.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// Options configures file resolver behavior.
type Options struct {
	// Paths are search directories, from lowest to highest precedence.
	Paths []string

	// Required: if true, a group without any file is an error. Default: false (no sources).
	Required bool
}

type fileResolver struct {
	opts Options
}

// New creates a resolver that reads <path>/<group>.<ext> from every search path.
func New(opts Options) confgroup.Resolver {
	return &fileResolver{opts: opts}
}

// Resolve returns one source per matching file, in search path order.
func (f *fileResolver) Resolve(ctx context.Context, group string) ([]map[string]any, error) {
	rel, err := groupPath(group)
	if err != nil {
		return nil, &confgroup.SourceError{Group: group, Err: err}
	}

	var sources []map[string]any
	for _, dir := range f.opts.Paths {
		for _, ext := range Extensions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			path := filepath.Join(dir, rel+ext)
			values, found, err := readFile(path)
			if err != nil {
				return nil, &confgroup.SourceError{Group: group, Source: "file:" + path, Err: err}
			}
			if found {
				sources = append(sources, values)
			}
		}
	}

	if len(sources) == 0 && f.opts.Required {
		return nil, &confgroup.SourceError{Group: group, Err: confgroup.ErrNoSources}
	}

	return sources, nil
}

// groupPath maps a group name to a relative file path without extension.
// Groups may name subdirectories ("cache/redis") but may not escape the search path.
func groupPath(group string) (string, error) {
	if group == "" || filepath.IsAbs(group) || strings.HasPrefix(group, "/") {
		return "", confgroup.ErrInvalidGroupPath
	}
	for _, part := range strings.Split(filepath.ToSlash(group), "/") {
		if part == "" || part == "." || part == ".." {
			return "", confgroup.ErrInvalidGroupPath
		}
	}
	return filepath.FromSlash(group), nil
}

// readFile parses one configuration file. Missing files are reported as not found.
func readFile(path string) (map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read config file: %w", err)
	}

	var raw any
	switch inferFormat(path) {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, false, fmt.Errorf("parse YAML: %w", err)
		}
	case "json":
		if err := decodeJSON(data, &raw); err != nil {
			return nil, false, fmt.Errorf("parse JSON: %w", err)
		}
	case "toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, false, fmt.Errorf("parse TOML: %w", err)
		}
		raw = doc
	default:
		return nil, false, fmt.Errorf("unsupported file format: %s (supported: yaml, json, toml)", filepath.Ext(path))
	}

	normalized := normalizeKeys(raw)
	if normalized == nil {
		// Empty document
		return map[string]any{}, true, nil
	}

	values, ok := normalized.(map[string]any)
	if !ok {
		return nil, false, errors.New("config root must be a mapping")
	}
	return values, true, nil
}

// decodeJSON decodes a single JSON document keeping numbers as json.Number.
func decodeJSON(data []byte, out *any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// normalizeKeys converts map[any]any (and nested maps) to map[string]any.
// Numbers come out as int when integral and float64 otherwise, whatever the format;
// TOML dates and times become strings, as YAML timestamps already are.
func normalizeKeys(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = normalizeKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprintf("%v", key)] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeKeys(v[i])
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int64:
		return int(v)
	case toml.LocalDate:
		return v.String()
	case toml.LocalTime:
		return v.String()
	case toml.LocalDateTime:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return value
	}
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
