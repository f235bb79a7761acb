package pipeline

import (
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/haatos/pipeline-composer/internal/predefined"
)

type CachePolicy string

const (
	CachePolicyPullPush CachePolicy = "pull-push"
	CachePolicyPull     CachePolicy = "pull"
	CachePolicyPush     CachePolicy = "push"
)

type CacheKeyConfig struct {
	Key    string
	Files  []string
	Prefix string
}

// CacheKey identifies a cache either by a fixed key or by the files whose
// content the key is computed from.
type CacheKey struct {
	key    string
	files  []string
	prefix string
}

// NewCacheKey defaults to a key named after the current branch or tag. Slashes
// and dots are not allowed in cache keys and are replaced with underscores and
// hyphens.
func NewCacheKey(cfg CacheKeyConfig) (*CacheKey, error) {
	switch {
	case cfg.Key != "" && len(cfg.Files) > 0:
		return nil, newConfigurationError("cache key", "key and files are mutually exclusive")
	case cfg.Prefix != "" && len(cfg.Files) == 0:
		return nil, newConfigurationError("cache key", "prefix can only be used together with files")
	}

	ck := &CacheKey{
		key:    cfg.Key,
		files:  slices.Clone(cfg.Files),
		prefix: cfg.Prefix,
	}
	if ck.key == "" && len(ck.files) == 0 {
		ck.key = predefined.CICommitRefSlug()
	}
	if ck.key != "" {
		ck.key = strings.NewReplacer("/", "_", ".", "-").Replace(ck.key)
	}
	return ck, nil
}

func MustNewCacheKey(cfg CacheKeyConfig) *CacheKey {
	ck, err := NewCacheKey(cfg)
	if err != nil {
		panic(err)
	}
	return ck
}

func (ck *CacheKey) Key() string {
	return ck.key
}

func (ck *CacheKey) Files() []string {
	return slices.Clone(ck.files)
}

// Render returns the key as a string or, for file based keys, as a mapping.
func (ck *CacheKey) Render() any {
	if ck.key != "" {
		return ck.key
	}
	rendered := yaml.MapSlice{{Key: "files", Value: slices.Clone(ck.files)}}
	if ck.prefix != "" {
		rendered = append(rendered, yaml.MapItem{Key: "prefix", Value: ck.prefix})
	}
	return rendered
}

func (ck *CacheKey) IsEqual(other *CacheKey) bool {
	if ck == nil || other == nil {
		return ck == other
	}
	return cmp.Equal(ck.Render(), other.Render())
}

type CacheConfig struct {
	Paths []string
	// Key defaults to NewCacheKey(CacheKeyConfig{}).
	Key       *CacheKey
	Untracked *bool
	When      When
	Policy    CachePolicy
}

type Cache struct {
	paths     []string
	key       *CacheKey
	untracked *bool
	when      When
	policy    CachePolicy
}

func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.When != "" && !cfg.When.jobResult() {
		return nil, newConfigurationError("cache", "when must be one of always, on_failure or on_success, got %q", cfg.When)
	}
	switch cfg.Policy {
	case "", CachePolicyPullPush, CachePolicyPull, CachePolicyPush:
	default:
		return nil, newConfigurationError("cache", "unknown policy %q", cfg.Policy)
	}

	c := &Cache{
		paths:     projectPaths(cfg.Paths),
		key:       cfg.Key,
		untracked: cloneBool(cfg.Untracked),
		when:      cfg.When,
		policy:    cfg.Policy,
	}
	if c.key == nil {
		key, err := NewCacheKey(CacheKeyConfig{})
		if err != nil {
			return nil, err
		}
		c.key = key
	}
	return c, nil
}

func MustNewCache(cfg CacheConfig) *Cache {
	c, err := NewCache(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cache) Paths() []string {
	return slices.Clone(c.paths)
}

func (c *Cache) Key() *CacheKey {
	return c.key
}

// Copy returns an independent copy of c. A nil c copies to nil.
func (c *Cache) Copy() *Cache {
	if c == nil {
		return nil
	}
	return &Cache{
		paths:     slices.Clone(c.paths),
		key:       c.key,
		untracked: cloneBool(c.untracked),
		when:      c.when,
		policy:    c.policy,
	}
}

func (c *Cache) Render() yaml.MapSlice {
	rendered := yaml.MapSlice{
		{Key: "key", Value: c.key.Render()},
		{Key: "paths", Value: append([]string{}, c.paths...)},
	}
	if c.untracked != nil {
		rendered = append(rendered, yaml.MapItem{Key: "untracked", Value: *c.untracked})
	}
	if c.when != "" {
		rendered = append(rendered, yaml.MapItem{Key: "when", Value: string(c.when)})
	}
	if c.policy != "" {
		rendered = append(rendered, yaml.MapItem{Key: "policy", Value: string(c.policy)})
	}
	return rendered
}

func (c *Cache) IsEqual(other *Cache) bool {
	if c == nil || other == nil {
		return c == other
	}
	return cmp.Equal(c.Render(), other.Render())
}
