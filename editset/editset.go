// Package editset applies batches of independent range replacements
// to a slice and computes the inverse batch that undoes them.
//
// This is the fix-up/undo path used outside live parsing: callers
// collect disjoint edits against a snapshot of a collection, apply
// them in one call, and hold on to the returned inverses to revert
// the aggregate change later.
package editset

import (
	"errors"
	"sort"

	"github.com/dshills/incremark/piece"
)

// Errors returned by Apply.
var (
	ErrEditsOverlap = errors.New("edits overlap")
	ErrRangeInvalid = errors.New("invalid range")
)

// Edit replaces the elements in Range with New.
type Edit[T any] struct {
	Range piece.Range
	New   []T
}

// Insert creates an edit inserting elems at offset.
func Insert[T any](offset int, elems []T) Edit[T] {
	return Edit[T]{Range: piece.Range{Start: offset, End: offset}, New: elems}
}

// Delete creates an edit removing the elements in [start, end).
func Delete[T any](start, end int) Edit[T] {
	return Edit[T]{Range: piece.Range{Start: start, End: end}}
}

// Apply applies all edits to s and returns the resulting slice along
// with the inverse batch. Edit ranges are expressed against s (the
// pre-batch coordinate space) and must be disjoint; overlapping edits
// fail with ErrEditsOverlap. s itself is not modified.
//
// The returned inverses are expressed against the returned slice, in
// ascending order, and are themselves disjoint, so applying them with
// Apply restores s exactly.
func Apply[T any](s []T, edits []Edit[T]) ([]T, []Edit[T], error) {
	if len(edits) == 0 {
		return append([]T(nil), s...), nil, nil
	}

	sorted := append([]Edit[T](nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start < sorted[j].Range.Start
	})

	for i, e := range sorted {
		if !e.Range.IsValid() || e.Range.End > len(s) {
			return nil, nil, ErrRangeInvalid
		}
		if i > 0 && sorted[i-1].Range.End > e.Range.Start {
			return nil, nil, ErrEditsOverlap
		}
	}

	// Build the inverse batch first, re-expressing each inverse
	// position in post-batch coordinates by accumulating the length
	// deltas of the edits before it.
	inverses := make([]Edit[T], len(sorted))
	delta := 0
	for i, e := range sorted {
		old := append([]T(nil), s[e.Range.Start:e.Range.End]...)
		start := e.Range.Start + delta
		inverses[i] = Edit[T]{
			Range: piece.Range{Start: start, End: start + len(e.New)},
			New:   old,
		}
		delta += len(e.New) - e.Range.Len()
	}

	// Apply in descending position order so lower-offset ranges stay
	// valid while higher ones are replaced.
	out := append([]T(nil), s...)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		tail := append(append([]T(nil), e.New...), out[e.Range.End:]...)
		out = append(out[:e.Range.Start], tail...)
	}

	return out, inverses, nil
}
