//go:build !cgo_sqlite
// +build !cgo_sqlite

package store

// This file is compiled when building without the cgo_sqlite tag. It uses a
// pure Go SQLite implementation, so no C compiler is required and the binary
// cross-compiles cleanly.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
