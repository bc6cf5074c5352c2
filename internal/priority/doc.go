// Package priority resolves strategy priorities from three layered tables
// (file-extension override, language override, global default) and tracks
// rolling per-strategy performance statistics.
//
// Strategies that have accumulated enough executions earn an advisory
// priority adjustment derived from their speed and success rate. The
// adjustment applies only during scoring and is never persisted back into
// the configured tables.
//
// The package also owns the configured portion of fallback paths: the
// ordered retry list consulted first when a strategy fails.
package priority
