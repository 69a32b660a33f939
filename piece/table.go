package piece

import (
	"errors"
	"sort"
	"unicode/utf16"
)

// Errors returned by table operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// source identifies which backing buffer a span points into.
type source uint8

const (
	srcOriginal source = iota // the content the table was created with
	srcAdded                  // content appended by edits
)

// span references a contiguous run of code units in one backing buffer.
type span struct {
	src    source
	start  int
	length int
}

// Table is an edit-optimized sequence of UTF-16 code units backed by a
// piece table. The original content is kept intact for the lifetime of
// the table; edits append to a separate buffer and rearrange spans, so
// unedited text is never copied.
//
// A Table is not safe for concurrent use. It is owned by a single
// editing session; the embedding application must confine access to
// one goroutine or guard it externally.
type Table struct {
	original []uint16
	added    []uint16
	spans    []span
	length   int

	// starts caches cumulative span start offsets for binary search.
	// nil means stale; rebuilt lazily after an edit.
	starts []int
}

// NewFromString creates a table holding the UTF-16 encoding of s.
func NewFromString(s string) *Table {
	return New(utf16.Encode([]rune(s)))
}

// New creates a table holding a copy of the given code units.
func New(content []uint16) *Table {
	original := make([]uint16, len(content))
	copy(original, content)

	t := &Table{
		original: original,
		length:   len(original),
	}
	if len(original) > 0 {
		t.spans = []span{{src: srcOriginal, start: 0, length: len(original)}}
	}
	return t
}

// Len returns the current length of the table in code units.
func (t *Table) Len() int {
	return t.length
}

// IsEmpty returns true if the table holds no content.
func (t *Table) IsEmpty() bool {
	return t.length == 0
}

// At returns the code unit at the given offset.
func (t *Table) At(offset int) (uint16, error) {
	if offset < 0 || offset >= t.length {
		return 0, ErrOffsetOutOfRange
	}
	i, rel := t.locate(offset)
	s := t.spans[i]
	return t.backing(s.src)[s.start+rel], nil
}

// ReadInto copies the code units in r into dst and returns the number
// copied. dst must have room for r.Len() units.
func (t *Table) ReadInto(dst []uint16, r Range) (int, error) {
	if !r.IsValid() || r.End > t.length {
		return 0, ErrRangeInvalid
	}
	if r.IsEmpty() {
		return 0, nil
	}
	if len(dst) < r.Len() {
		return 0, ErrRangeInvalid
	}

	n := 0
	i, rel := t.locate(r.Start)
	remaining := r.Len()
	for remaining > 0 {
		s := t.spans[i]
		take := s.length - rel
		if take > remaining {
			take = remaining
		}
		buf := t.backing(s.src)
		n += copy(dst[n:], buf[s.start+rel:s.start+rel+take])
		remaining -= take
		rel = 0
		i++
	}
	return n, nil
}

// Read returns a copy of the code units in r.
func (t *Table) Read(r Range) ([]uint16, error) {
	if !r.IsValid() || r.End > t.length {
		return nil, ErrRangeInvalid
	}
	dst := make([]uint16, r.Len())
	if _, err := t.ReadInto(dst, r); err != nil {
		return nil, err
	}
	return dst, nil
}

// Slice returns the text in r as a string.
func (t *Table) Slice(r Range) (string, error) {
	units, err := t.Read(r)
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}

// String returns the full content as a string.
func (t *Table) String() string {
	s, _ := t.Slice(Range{Start: 0, End: t.length})
	return s
}

// Replace replaces the code units in r with content and returns the
// change in length. Replacing an empty range is an insertion; replacing
// with empty content is a deletion.
func (t *Table) Replace(r Range, content []uint16) (int, error) {
	if !r.IsValid() || r.End > t.length {
		return 0, ErrRangeInvalid
	}

	i := t.splitAt(r.Start)
	j := t.splitAt(r.End)
	delta := len(content) - r.Len()

	var mid []span
	if len(content) > 0 {
		start := len(t.added)
		t.added = append(t.added, content...)

		// Consecutive typing lands at the tail of the added buffer;
		// extend the preceding span instead of growing the span list.
		if i > 0 {
			prev := t.spans[i-1]
			if prev.src == srcAdded && prev.start+prev.length == start {
				t.spans[i-1].length += len(content)
			} else {
				mid = []span{{src: srcAdded, start: start, length: len(content)}}
			}
		} else {
			mid = []span{{src: srcAdded, start: start, length: len(content)}}
		}
	}

	tail := make([]span, 0, len(mid)+len(t.spans)-j)
	tail = append(tail, mid...)
	tail = append(tail, t.spans[j:]...)
	t.spans = append(t.spans[:i], tail...)

	t.length += delta
	t.starts = nil
	return delta, nil
}

// ReplaceString replaces the code units in r with the UTF-16 encoding
// of s.
func (t *Table) ReplaceString(r Range, s string) (int, error) {
	return t.Replace(r, utf16.Encode([]rune(s)))
}

// RevertToOriginal discards every edit and restores the content the
// table was created with.
func (t *Table) RevertToOriginal() {
	t.spans = t.spans[:0]
	if len(t.original) > 0 {
		t.spans = append(t.spans, span{src: srcOriginal, start: 0, length: len(t.original)})
	}
	t.added = t.added[:0]
	t.length = len(t.original)
	t.starts = nil
}

// OriginalLen returns the length of the original (pre-edit) content.
func (t *Table) OriginalLen() int {
	return len(t.original)
}

// backing returns the buffer a span source points into.
func (t *Table) backing(src source) []uint16 {
	if src == srcOriginal {
		return t.original
	}
	return t.added
}

// ensureStarts rebuilds the cumulative start index if it is stale.
func (t *Table) ensureStarts() {
	if t.starts != nil {
		return
	}
	starts := make([]int, len(t.spans)+1)
	for i, s := range t.spans {
		starts[i+1] = starts[i] + s.length
	}
	t.starts = starts
}

// locate returns the index of the span containing offset and the
// offset's position within that span. offset must be in [0, length).
func (t *Table) locate(offset int) (spanIndex, rel int) {
	t.ensureStarts()
	i := sort.Search(len(t.spans), func(i int) bool {
		return t.starts[i+1] > offset
	})
	return i, offset - t.starts[i]
}

// splitAt ensures a span boundary exists at offset and returns the
// index of the first span at or after it.
func (t *Table) splitAt(offset int) int {
	if offset == t.length {
		return len(t.spans)
	}
	i, rel := t.locate(offset)
	if rel == 0 {
		return i
	}

	s := t.spans[i]
	t.spans = append(t.spans, span{})
	copy(t.spans[i+2:], t.spans[i+1:])
	t.spans[i] = span{src: s.src, start: s.start, length: rel}
	t.spans[i+1] = span{src: s.src, start: s.start + rel, length: s.length - rel}
	t.starts = nil
	return i + 1
}
