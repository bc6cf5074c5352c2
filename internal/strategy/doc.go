// Package strategy defines the segmentation strategy contract, the startup
// registry, and the built-in strategy set.
//
// A Strategy turns one file's content (plus an optional syntax tree) into an
// ordered list of chunks. Every built-in strategy produces cut points and
// shares a single assembly pass, which guarantees the coverage invariant:
// chunks cover the full line range with no gaps, segments below MinChunkSize
// merge with a neighbor, and segments above MaxChunkSize split at line
// granularity. Only a single line longer than MaxChunkSize may exceed the
// bound, since one line is the atomic unit.
//
// # Built-in Strategies
//
//	ast       syntax-tree declaration boundaries (requires AST)
//	function  top-level declarations via structural scan
//	markdown  heading sections (.md direct trigger)
//	xml       shallow element boundaries (.xml/.html/.svg direct trigger)
//	semantic  blank-line separated blocks
//	bracket   bracket-balanced boundaries
//	line      fixed-size line windows; the terminal fallback
//
// Strategies are stateless and safe for concurrent use. Long-running ones
// check ctx at loop boundaries so the coordinator's deadline is cooperative.
package strategy
