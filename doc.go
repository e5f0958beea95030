// Package taskcore provides the authorization-aware data-access and
// caching engine for a multi-tenant task-tracking service: JWT access
// tokens, registry-gated refresh tokens, ownership/role enforcement, and
// a Redis read-through cache kept coherent with the durable store.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// taskcore is the public surface. It exposes [Engine], [Builder],
// [Config], the store contracts ([UserStore], [TaskStore],
// [ObjectStorage]), and value types. Token signing lives in token/,
// session membership in session/, cache plumbing in cache/, and store
// adapters under stores/. The HTTP transport in httpapi/ is a thin layer
// over the Engine and carries no business rules.
//
// # Consistency contract
//
// The durable store is authoritative; the cache is advisory. Every task
// mutation invalidates the owner's stats cache before returning. List
// caches are intentionally left to expire by TTL. Cache failures degrade
// silently to store reads and never fail a request.
package taskcore
