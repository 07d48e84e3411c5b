package hoard

import "sync"

// The process-wide default cache. Construct one Cache at process start,
// install it with SetDefault, and pass it to collaborators explicitly;
// Default exists for call sites that cannot take an injected *Cache.
// Tests should construct their own instances instead of sharing this one.
var (
	defaultMu    sync.RWMutex
	defaultCache *Cache
)

// SetDefault installs cache as the process-wide default and returns the
// previously installed cache, if any.
func SetDefault(cache *Cache) *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultCache
	defaultCache = cache
	return prev
}

// Default returns the cache installed by SetDefault, or nil when none has
// been installed.
func Default() *Cache {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCache
}
