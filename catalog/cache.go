package catalog

import "time"

// Cache abstracts the course-list cache so the in-memory implementation can
// be swapped for a shared one without touching the engine.
type Cache interface {
	// Get retrieves the cached course list, nil on miss or expiry.
	Get() []*Course

	// Set stores the course list.
	Set(courses []*Course)

	// Invalidate clears the cache, forcing a refresh on the next Get.
	Invalidate()

	// IsValid reports whether the cache currently holds live data.
	IsValid() bool
}

// CacheConfig controls cache expiry.
type CacheConfig struct {
	// TTL is the time-to-live for the cached list. Zero means no expiry;
	// the cache only refreshes when a mutation invalidates it.
	TTL time.Duration
}

// DefaultCacheConfig returns invalidate-on-mutation behavior with no TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}
