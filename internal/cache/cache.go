// Package cache holds small in-process caches for derived data.
package cache

// Cache memoizes derived values by key. Writers to the underlying data call
// Purge; there is no per-key invalidation.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)

	// Purge drops every entry and reports how many were held.
	Purge() int
}
