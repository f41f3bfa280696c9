// Package pipeline runs the corpus build stages (generate, reconcile, index,
// normalize, prune) and the human lifecycle actions (promote, mark) against
// one configuration and one output-state resolver.
//
// Per-example failures during generation are collected in the Report and
// never abort the run; stage-level failures (unreadable directories, a
// broken ledger) stop the run and are returned.
package pipeline
