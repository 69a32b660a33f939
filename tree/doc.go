// Package tree provides the syntax tree produced by parsing.
//
// Nodes store a type, a length in code units, and ordered children,
// never an absolute position. Because positions are always recovered
// by accumulating sibling lengths from a known root offset, an edit
// that shifts the tail of a document leaves every node in the shifted
// region untouched; only the spine covering the edit is rebuilt.
//
// Two construction optimizations keep trees small and sharing safe:
//
//   - Fragments (unrooted sibling lists) are spliced into their parent
//     rather than nested, so rules that produce several nodes without a
//     wrapping type add no intermediate layers.
//
//   - Adjacent childless nodes of the same type are merged into one
//     leaf covering both, so a run of single-character matches becomes
//     a single leaf. Merging is copy-on-write: a node frozen with
//     Freeze (because an earlier tree or the memoization table still
//     references it) is cloned before its length is extended.
//
// Anchored is the position-aware view: a (node, absolute start) pair
// computed during traversal, supporting path queries to an index and
// pre-order searches with absolute ranges.
package tree
