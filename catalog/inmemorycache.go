package catalog

import (
	"sync"
	"time"
)

// InMemoryCache is a mutex-guarded Cache implementation.
type InMemoryCache struct {
	courses  []*Course
	cachedAt time.Time
	config   CacheConfig
	isValid  bool
	mu       sync.RWMutex
}

// NewInMemoryCache creates an empty in-memory course-list cache.
func NewInMemoryCache(config CacheConfig) *InMemoryCache {
	return &InMemoryCache{config: config}
}

// Get returns the cached list, or nil when invalid or past TTL.
func (c *InMemoryCache) Get() []*Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return nil
	}
	if c.config.TTL > 0 && time.Since(c.cachedAt) > c.config.TTL {
		return nil
	}

	// Copy so callers cannot mutate the cached slice.
	coursesCopy := make([]*Course, len(c.courses))
	copy(coursesCopy, c.courses)
	return coursesCopy
}

// Set stores a copy of the course list.
func (c *InMemoryCache) Set(courses []*Course) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.courses = make([]*Course, len(courses))
	copy(c.courses, courses)
	c.cachedAt = time.Now()
	c.isValid = true
}

// Invalidate drops the cached list.
func (c *InMemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.courses = nil
}

// IsValid reports whether a Get would currently hit.
func (c *InMemoryCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}
	return true
}
