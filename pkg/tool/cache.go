package tool

import (
	"fmt"
	"sync"
)

// Dimension tags which vector space an embedding belongs to. The same
// embedding id holds one vector per space.
type Dimension int

const (
	// DimensionBooks is the textbook corpus vector space
	DimensionBooks Dimension = 3072
	// DimensionVideos is the video corpus vector space
	DimensionVideos Dimension = 1536
)

type cacheKey struct {
	id  string
	dim Dimension
}

// Cache holds embedding vectors for the duration of one generation request,
// keyed by (id, dimension). Vectors never travel through the LLM
// conversation; tools exchange ids and look the vectors up here. Build a
// fresh Cache per request so concurrent requests cannot see each other's
// embeddings.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]float32
	counter int
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[cacheKey][]float32),
	}
}

// NextID mints a monotonically increasing embedding id within this request.
func (c *Cache) NextID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return fmt.Sprintf("emb_%d", c.counter)
}

// Put stores a vector under the composite (id, dimension) key.
func (c *Cache) Put(id string, dim Dimension, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{id: id, dim: dim}] = vec
}

// Get returns the vector for (id, dimension), or false if that dimension
// variant was never stored.
func (c *Cache) Get(id string, dim Dimension) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.entries[cacheKey{id: id, dim: dim}]
	return vec, ok
}

// Clear drops all stored vectors. Idempotent.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey][]float32)
}
