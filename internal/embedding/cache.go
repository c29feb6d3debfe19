package embedding

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
)

// VectorCache stores previously computed embedding vectors keyed by
// an exact hash of the input text.
type VectorCache interface {
	Get(key string) ([]float64, bool)
	Put(key string, vector []float64)
}

// Cached wraps an Embedder with exact-match caching so repeated texts
// (re-ingested chunks, repeated questions) skip the network call.
type Cached struct {
	inner domain.Embedder
	cache VectorCache
}

// NewCached creates a caching wrapper around inner.
func NewCached(inner domain.Embedder, cache VectorCache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

// Name returns the wrapped embedder's identifier.
func (c *Cached) Name() string { return c.inner.Name() }

// Dimension returns the wrapped embedder's vector dimensionality.
func (c *Cached) Dimension() int { return c.inner.Dimension() }

// Embed returns the cached vector for text if present, otherwise
// delegates to the wrapped embedder and stores the result.
func (c *Cached) Embed(text string) ([]float64, error) {
	key := hashText(text)
	if v, ok := c.cache.Get(key); ok {
		logger.Debug("embedding cache hit: %s", key[:12])
		return v, nil
	}
	v, err := c.inner.Embed(text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, v)
	return v, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}

// MemoryCache is an in-process VectorCache.
type MemoryCache struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vectors: make(map[string][]float64)}
}

func (m *MemoryCache) Get(key string) ([]float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[key]
	return v, ok
}

func (m *MemoryCache) Put(key string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[key] = vector
}
