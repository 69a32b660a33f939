package memo

import (
	"github.com/dshills/incremark/piece"
	"github.com/dshills/incremark/tree"
)

// Result is a cached parse outcome for one rule at one position.
type Result struct {
	// OK reports whether the rule matched.
	OK bool

	// Length is the number of code units consumed (success only).
	Length int

	// Examined is the number of code units probed from the start
	// position while computing this result, including failed probes
	// and lookahead. Examined >= Length for successes; a failure
	// examines at least one unit unless it failed at end of input.
	Examined int

	// Node is the node or fragment the rule produced, frozen so a
	// later parse can splice it into a new tree. nil for failures
	// and for rules that produce no nodes.
	Node *tree.Node
}

// Table caches (rule, position) parse outcomes for one editing
// session. Entries are keyed by the rule's identity and the absolute
// start position of the attempt.
//
// The central invariant: every entry present in the table is valid
// for the current buffer content. ApplyEdit preserves it by shifting
// entries past an edit and removing entries the edit touched.
//
// A Table must never be reused across different grammars, and is not
// safe for concurrent use.
type Table struct {
	cols map[int]map[uint32]Result

	hits   uint64
	misses uint64
}

// NewTable creates an empty memoization table.
func NewTable() *Table {
	return &Table{cols: make(map[int]map[uint32]Result)}
}

// Get returns the cached result for a rule at a position.
func (t *Table) Get(rule uint32, pos int) (Result, bool) {
	col, ok := t.cols[pos]
	if !ok {
		t.misses++
		return Result{}, false
	}
	r, ok := col[rule]
	if ok {
		t.hits++
	} else {
		t.misses++
	}
	return r, ok
}

// Put stores the result of a rule attempt at a position. The result's
// node is frozen: it may be spliced into future trees, so it must not
// be mutated in place afterwards.
func (t *Table) Put(rule uint32, pos int, r Result) {
	if r.Examined < r.Length {
		r.Examined = r.Length
	}
	if r.Node != nil {
		r.Node.Freeze()
	}
	col, ok := t.cols[pos]
	if !ok {
		col = make(map[uint32]Result)
		t.cols[pos] = col
	}
	col[rule] = r
}

// Len returns the number of cached entries.
func (t *Table) Len() int {
	n := 0
	for _, col := range t.cols {
		n += len(col)
	}
	return n
}

// Clear removes every entry.
func (t *Table) Clear() {
	t.cols = make(map[int]map[uint32]Result)
}

// Stats returns the cumulative hit and miss counts.
func (t *Table) Stats() (hits, misses uint64) {
	return t.hits, t.misses
}

// ApplyEdit repositions the table after the code units in r were
// replaced by newLen units:
//
//   - entries whose examined span ends at or before the edit are kept
//     as-is;
//   - entries whose examined span overlaps the edited region are
//     removed, since their outcome can no longer be assumed correct;
//   - entries starting at or after the edit's original end shift by
//     the edit's length delta. An entry starting exactly at the end
//     boundary consumed no edited content, so it shifts rather than
//     being invalidated.
//
// A re-parse after ApplyEdit reuses every surviving entry, so the
// observable cost of an edit is proportional to the rule applications
// touching the edited region and its ancestors, not to document size.
func (t *Table) ApplyEdit(r piece.Range, newLen int) {
	delta := newLen - r.Len()
	out := make(map[int]map[uint32]Result, len(t.cols))

	for pos, col := range t.cols {
		switch {
		case pos >= r.End:
			out[pos+delta] = col

		case pos >= r.Start:
			// Starts inside the edited region: dropped.

		default:
			var kept map[uint32]Result
			for id, res := range col {
				if pos+res.Examined > r.Start {
					continue
				}
				if kept == nil {
					kept = make(map[uint32]Result, len(col))
				}
				kept[id] = res
			}
			if kept != nil {
				out[pos] = kept
			}
		}
	}

	t.cols = out
}
