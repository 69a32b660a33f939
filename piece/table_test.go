package piece

import (
	"errors"
	"testing"
	"unicode/utf16"
)

func TestNewFromString(t *testing.T) {
	tb := NewFromString("Hello, World!")

	if tb.Len() != 13 {
		t.Errorf("expected length 13, got %d", tb.Len())
	}
	if tb.String() != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", tb.String())
	}
}

func TestNewEmpty(t *testing.T) {
	tb := NewFromString("")

	if !tb.IsEmpty() {
		t.Error("new empty table should be empty")
	}
	if tb.Len() != 0 {
		t.Errorf("expected length 0, got %d", tb.Len())
	}
}

func TestAt(t *testing.T) {
	tb := NewFromString("abc")

	u, err := tb.At(1)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if u != 'b' {
		t.Errorf("expected 'b', got %c", rune(u))
	}
}

func TestAtOutOfRange(t *testing.T) {
	tb := NewFromString("abc")

	if _, err := tb.At(3); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if _, err := tb.At(-1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
}

func TestReplaceInsert(t *testing.T) {
	tb := NewFromString("Hello World")

	delta, err := tb.ReplaceString(Range{Start: 5, End: 5}, ",")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if delta != 1 {
		t.Errorf("expected delta 1, got %d", delta)
	}
	if tb.String() != "Hello, World" {
		t.Errorf("expected 'Hello, World', got %q", tb.String())
	}
	if tb.Len() != 12 {
		t.Errorf("expected length 12, got %d", tb.Len())
	}
}

func TestReplaceDelete(t *testing.T) {
	tb := NewFromString("abcXdef")

	delta, err := tb.ReplaceString(Range{Start: 3, End: 4}, "")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if delta != -1 {
		t.Errorf("expected delta -1, got %d", delta)
	}
	if tb.String() != "abcdef" {
		t.Errorf("expected 'abcdef', got %q", tb.String())
	}
	if tb.Len() != 6 {
		t.Errorf("expected length 6, got %d", tb.Len())
	}
}

func TestReplaceMiddle(t *testing.T) {
	tb := NewFromString("Hello, World!")

	_, err := tb.ReplaceString(Range{Start: 7, End: 12}, "Go")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if tb.String() != "Hello, Go!" {
		t.Errorf("expected 'Hello, Go!', got %q", tb.String())
	}
}

func TestReplaceAtStartAndEnd(t *testing.T) {
	tb := NewFromString("middle")

	if _, err := tb.ReplaceString(Range{Start: 0, End: 0}, "start "); err != nil {
		t.Fatalf("insert at start failed: %v", err)
	}
	if _, err := tb.ReplaceString(Range{Start: tb.Len(), End: tb.Len()}, " end"); err != nil {
		t.Fatalf("insert at end failed: %v", err)
	}
	if tb.String() != "start middle end" {
		t.Errorf("expected 'start middle end', got %q", tb.String())
	}
}

func TestReplaceOutOfRange(t *testing.T) {
	tb := NewFromString("abc")

	if _, err := tb.ReplaceString(Range{Start: 2, End: 4}, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid for end beyond length, got %v", err)
	}
	if _, err := tb.ReplaceString(Range{Start: -1, End: 2}, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid for negative start, got %v", err)
	}
	if _, err := tb.ReplaceString(Range{Start: 2, End: 1}, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid for inverted range, got %v", err)
	}
	if tb.String() != "abc" {
		t.Errorf("failed replace must not modify the table, got %q", tb.String())
	}
}

func TestReplaceConsecutiveTyping(t *testing.T) {
	tb := NewFromString("ab")

	// Simulate typing one character at a time.
	for i, r := range "hello" {
		pos := 1 + i
		if _, err := tb.ReplaceString(Range{Start: pos, End: pos}, string(r)); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	if tb.String() != "ahellob" {
		t.Errorf("expected 'ahellob', got %q", tb.String())
	}
	// The trailing added span should have been extended in place
	// rather than creating one span per keystroke.
	if len(tb.spans) != 3 {
		t.Errorf("expected 3 spans, got %d", len(tb.spans))
	}
}

func TestManyEditsRoundTrip(t *testing.T) {
	tb := NewFromString("0123456789")

	edits := []struct {
		r    Range
		text string
		want string
	}{
		{Range{Start: 0, End: 1}, "X", "X123456789"},
		{Range{Start: 5, End: 8}, "", "X123489"},
		{Range{Start: 3, End: 3}, "abc", "X12abc3489"},
		{Range{Start: 9, End: 10}, "YZ", "X12abc348YZ"},
	}

	for i, step := range edits {
		if _, err := tb.ReplaceString(step.r, step.text); err != nil {
			t.Fatalf("edit %d failed: %v", i, err)
		}
		if tb.String() != step.want {
			t.Fatalf("edit %d: expected %q, got %q", i, step.want, tb.String())
		}
		if tb.Len() != len(step.want) {
			t.Fatalf("edit %d: expected length %d, got %d", i, len(step.want), tb.Len())
		}
	}
}

func TestRead(t *testing.T) {
	tb := NewFromString("Hello, World!")
	if _, err := tb.ReplaceString(Range{Start: 7, End: 12}, "Go"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	units, err := tb.Read(Range{Start: 7, End: 9})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(utf16.Decode(units)) != "Go" {
		t.Errorf("expected 'Go', got %q", string(utf16.Decode(units)))
	}
}

func TestReadSpansBoundaries(t *testing.T) {
	tb := NewFromString("abcdef")
	if _, err := tb.ReplaceString(Range{Start: 3, End: 3}, "XY"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	// Range crosses original/added/original span boundaries.
	s, err := tb.Slice(Range{Start: 1, End: 7})
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	if s != "bcXYde" {
		t.Errorf("expected 'bcXYde', got %q", s)
	}
}

func TestReadOutOfRange(t *testing.T) {
	tb := NewFromString("abc")

	if _, err := tb.Read(Range{Start: 1, End: 4}); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestReadInto(t *testing.T) {
	tb := NewFromString("abcdef")

	dst := make([]uint16, 3)
	n, err := tb.ReadInto(dst, Range{Start: 2, End: 5})
	if err != nil {
		t.Fatalf("ReadInto failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 units copied, got %d", n)
	}
	if string(utf16.Decode(dst)) != "cde" {
		t.Errorf("expected 'cde', got %q", string(utf16.Decode(dst)))
	}
}

func TestRevertToOriginal(t *testing.T) {
	tb := NewFromString("original content")

	if _, err := tb.ReplaceString(Range{Start: 0, End: 8}, "replaced"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if _, err := tb.ReplaceString(Range{Start: 9, End: 16}, ""); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := tb.ReplaceString(Range{Start: 0, End: 0}, ">> "); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	tb.RevertToOriginal()

	if tb.String() != "original content" {
		t.Errorf("expected original content back, got %q", tb.String())
	}
	if tb.Len() != tb.OriginalLen() {
		t.Errorf("expected length %d, got %d", tb.OriginalLen(), tb.Len())
	}
}

func TestRevertThenEdit(t *testing.T) {
	tb := NewFromString("abc")

	if _, err := tb.ReplaceString(Range{Start: 1, End: 2}, "XYZ"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	tb.RevertToOriginal()
	if _, err := tb.ReplaceString(Range{Start: 3, End: 3}, "def"); err != nil {
		t.Fatalf("replace after revert failed: %v", err)
	}

	if tb.String() != "abcdef" {
		t.Errorf("expected 'abcdef', got %q", tb.String())
	}
}

func TestSupplementaryPlaneCharacters(t *testing.T) {
	// U+1F600 occupies two UTF-16 code units.
	tb := NewFromString("a\U0001F600b")

	if tb.Len() != 4 {
		t.Errorf("expected 4 code units, got %d", tb.Len())
	}
	if _, err := tb.ReplaceString(Range{Start: 3, End: 4}, "c"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if tb.String() != "a\U0001F600c" {
		t.Errorf("expected emoji preserved, got %q", tb.String())
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 2, End: 5}

	if r.Len() != 3 {
		t.Errorf("expected length 3, got %d", r.Len())
	}
	if r.IsEmpty() {
		t.Error("non-empty range reported empty")
	}
	if !r.Contains(2) || r.Contains(5) {
		t.Error("Contains should be inclusive of start, exclusive of end")
	}
	if !r.Overlaps(Range{Start: 4, End: 6}) {
		t.Error("expected overlap")
	}
	if r.Overlaps(Range{Start: 5, End: 6}) {
		t.Error("touching ranges do not overlap")
	}
	if got := r.Shift(-2); got.Start != 0 || got.End != 3 {
		t.Errorf("expected [0:3), got %s", got)
	}
}
