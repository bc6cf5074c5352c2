// Package store persists chunking results in SQLite so repeated indexing
// runs can skip files whose content hash has not changed.
//
// The store is deliberately small: files keyed by path with their content
// hash, and the chunks the engine produced for them. It is a local result
// cache for the indexing pipeline, not a vector or graph store.
//
// Two drivers are supported via build tags: modernc.org/sqlite (pure Go,
// default) and mattn/go-sqlite3 (cgo_sqlite tag).
package store
