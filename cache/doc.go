// Package cache is a thin Redis adapter for read-through caching of
// serialized query results.
//
// Entries are advisory: every operation degrades to a miss (or a no-op)
// when Redis is unreachable, so cache trouble can slow a request down but
// never fail it or change its result. Values are opaque JSON blobs; the
// cache never interprets them.
package cache
