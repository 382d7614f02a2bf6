package cachefile

import (
	"context"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // file naming only
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Azhovan/confgroup"
	"gopkg.in/yaml.v3"
)

// DefaultLifetime is how long an entry stays valid when Options.Lifetime is zero.
const DefaultLifetime = 60 * time.Second

// Options configures the file cache.
type Options struct {
	// Lifetime after which entries expire. Zero = DefaultLifetime, negative = never expire.
	Lifetime time.Duration

	// Now overrides the clock (tests). Default: time.Now.
	Now func() time.Time
}

// Cache stores merged groups as YAML files in a directory. Thread-safe: writes are atomic renames.
type Cache struct {
	dir      string
	lifetime time.Duration
	now      func() time.Time
}

// entry is the on-disk format of a cached group.
type entry struct {
	Key     string         `yaml:"key"`
	Created time.Time      `yaml:"created"`
	Values  map[string]any `yaml:"values"`
}

// New creates a cache rooted at dir. The directory is created on first write.
func New(dir string, opts Options) *Cache {
	lifetime := opts.Lifetime
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{dir: dir, lifetime: lifetime, now: now}
}

// Path returns the file that holds key.
func (c *Cache) Path(key string) string {
	sum := sha1.Sum([]byte(key)) //nolint:gosec // file naming only
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".yaml")
}

// Get returns the entry for key. Missing, expired or foreign entries are misses;
// expired files are removed.
func (c *Cache) Get(_ context.Context, key string) (confgroup.Optional[map[string]any], error) {
	var miss confgroup.Optional[map[string]any]

	path := c.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return miss, nil
		}
		return miss, fmt.Errorf("read cache file %s: %w", path, err)
	}

	var e entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return miss, fmt.Errorf("parse cache file %s: %w", path, err)
	}

	if e.Key != key {
		return miss, nil
	}

	if c.lifetime > 0 && e.Created.Add(c.lifetime).Before(c.now()) {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return miss, fmt.Errorf("remove expired cache file %s: %w", path, err)
		}
		return miss, nil
	}

	if e.Values == nil {
		e.Values = map[string]any{}
	}
	return confgroup.Some(e.Values), nil
}

// Put writes values for key atomically (temp file + rename).
func (c *Cache) Put(_ context.Context, key string, values map[string]any) error {
	if values == nil {
		values = map[string]any{}
	}

	data, err := yaml.Marshal(entry{Key: key, Created: c.now().UTC(), Values: tagFloats(values)})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	targetPath := c.Path(key)
	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write cache file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes the entry for key. Missing entries are not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}
	return nil
}

// yamlFloat is a float64 that is always written with an explicit !!float tag,
// so 30.0 is read back as float64(30) instead of int(30).
type yamlFloat float64

func (f yamlFloat) MarshalYAML() (any, error) {
	var text string
	switch v := float64(f); {
	case math.IsNaN(v):
		text = ".nan"
	case math.IsInf(v, 1):
		text = ".inf"
	case math.IsInf(v, -1):
		text = "-.inf"
	default:
		text = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}, nil
}

// tagFloats returns a copy of values with every float wrapped in yamlFloat.
func tagFloats(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = tagFloat(v)
	}
	return out
}

func tagFloat(v any) any {
	switch typed := v.(type) {
	case float64:
		return yamlFloat(typed)
	case float32:
		return yamlFloat(typed)
	case map[string]any:
		return tagFloats(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = tagFloat(typed[i])
		}
		return out
	default:
		return v
	}
}

// generateTempFileName returns a unique sibling of targetPath so the rename stays on one filesystem.
// Format: targetPath + ".tmp." + randomHex
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
