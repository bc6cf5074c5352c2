// Package selector picks the best segmentation strategy for a file.
//
// Selection is a two-stage decision. Direct triggers come first: configured
// file-type rules (markdown files, markup files, test-file naming patterns)
// that mandate a strategy without scoring. Everything else is scored from the
// strategy's adjusted priority plus language, AST-availability, file-size,
// and content-structure bonuses; ties break by adjusted priority and then
// registration order, so selection is fully deterministic for fixed inputs
// and statistics.
package selector
