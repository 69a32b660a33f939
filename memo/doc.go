// Package memo provides the memoization table that makes re-parsing
// incremental.
//
// The parser records the outcome of every rule application (success
// with consumed length and produced node, or failure) keyed by rule
// identity and start position. When the buffer is edited, ApplyEdit
// shifts entries beyond the edit by the edit's length delta and
// removes entries whose examined span the edit touched. The next
// parse then reuses all surviving work, so re-parse cost tracks the
// size of the edit's syntactic neighborhood rather than the document.
//
// A table belongs to a single editing session and a single grammar;
// it is purely an optimization and never changes what a parse
// produces.
package memo
