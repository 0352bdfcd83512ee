package backend

import (
	"context"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ScriptCache wraps a Service and memoizes GenerateScripts. Scripts depend
// only on the format names, never on file bytes.
type ScriptCache struct {
	Service
	cache *expirable.LRU[string, map[string]string]
}

// NewScriptCache returns a Service that caches up to size script sets for ttl.
func NewScriptCache(base Service, size int, ttl time.Duration) *ScriptCache {
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ScriptCache{
		Service: base,
		cache:   expirable.NewLRU[string, map[string]string](size, nil, ttl),
	}
}

// GenerateScripts returns cached scripts when available, otherwise it
// delegates and stores the result. Failures are not cached.
func (c *ScriptCache) GenerateScripts(ctx context.Context, sourceFormat, targetFormat string) (map[string]string, error) {
	key := sourceFormat + "\x00" + targetFormat
	if scripts, ok := c.cache.Get(key); ok {
		return maps.Clone(scripts), nil
	}

	scripts, err := c.Service.GenerateScripts(ctx, sourceFormat, targetFormat)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, maps.Clone(scripts))
	return scripts, nil
}

// Len reports the number of cached script sets.
func (c *ScriptCache) Len() int {
	return c.cache.Len()
}
