package cache

// EvictCallback is called when an entry is evicted from the cache.
// The redis provider passes a nil value since evicted values are not fetched back.
type EvictCallback func(key string, value []byte)

// Cache is the key-value store behind the artifact index. Values are opaque bytes
// (JSON-encoded artifact records); entries expire after the configured TTL and the
// least-recently-used ones are evicted once the size limit is reached.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key, overwriting any previous value.
	Set(key string, value []byte)

	// Delete removes a key. Deleting an absent key is a no-op.
	Delete(key string)

	// Contains checks whether a key exists without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the number of entries currently in the cache.
	Len() int

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}
