// Package decorator provides the behavior-preserving wrappers composed
// around any strategy without changing its interface: execution caching
// (TTL + bounded LRU), overlap injection, and performance monitoring.
//
// Composition order is fixed — cache, overlap, monitor, base — so that a
// cache hit returns the final post-overlap chunks with zero execution time
// and no performance-stats record.
package decorator
