// Package piece provides an edit-optimized text buffer backed by a
// piece table over UTF-16 code units.
//
// A Table represents the document as an ordered list of spans, each
// referencing either the original content or an append-only buffer of
// edited content. Concatenating the spans in order yields the current
// document; unedited text is never copied, so a replacement costs
// O(edit size + log n) amortized rather than O(document size).
//
// Basic usage:
//
//	t := piece.NewFromString("Hello, World!")
//
//	// Insert text (replace an empty range)
//	t.ReplaceString(piece.Range{Start: 7, End: 7}, "Beautiful ")
//
//	// Delete text (replace with empty content)
//	t.ReplaceString(piece.Range{Start: 0, End: 7}, "")
//
//	// Undo everything
//	t.RevertToOriginal()
//
// The original content is retained for the table's lifetime, so
// RevertToOriginal restores it exactly after any number of edits.
//
// Content is addressed in UTF-16 code units, matching the coordinate
// space used by parse trees built on top of the table.
//
// A Table is not safe for concurrent use.
package piece
