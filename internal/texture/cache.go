package texture

import (
	"sync"

	"github.com/packerman/pcg/pkg/compile"
)

// Cache is an in-memory cache of loaded textures keyed by file name.
type Cache struct {
	data map[string]compile.TextureData
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string]compile.TextureData)}
}

// Get retrieves a texture.
func (c *Cache) Get(key string) (compile.TextureData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores a texture.
func (c *Cache) Set(key string, data compile.TextureData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
