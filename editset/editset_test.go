package editset

import (
	"errors"
	"testing"

	"github.com/dshills/incremark/piece"
)

func runes(s string) []rune {
	return []rune(s)
}

func TestApplySingleEdit(t *testing.T) {
	out, inv, err := Apply(runes("Hello, World!"), []Edit[rune]{
		{Range: piece.Range{Start: 7, End: 12}, New: runes("Go")},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if string(out) != "Hello, Go!" {
		t.Errorf("expected 'Hello, Go!', got %q", string(out))
	}
	if len(inv) != 1 {
		t.Fatalf("expected 1 inverse edit, got %d", len(inv))
	}
	if inv[0].Range != (piece.Range{Start: 7, End: 9}) {
		t.Errorf("expected inverse range [7:9), got %s", inv[0].Range)
	}
	if string(inv[0].New) != "World" {
		t.Errorf("expected inverse content 'World', got %q", string(inv[0].New))
	}
}

func TestApplyMultipleEdits(t *testing.T) {
	// Edits are given out of order; Apply sorts them and applies
	// high-to-low so earlier ranges stay valid.
	out, _, err := Apply(runes("0123456789"), []Edit[rune]{
		{Range: piece.Range{Start: 8, End: 10}, New: runes("XY")},
		{Range: piece.Range{Start: 0, End: 2}, New: runes("ab")},
		{Range: piece.Range{Start: 4, End: 5}, New: nil},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if string(out) != "ab23567XY" {
		t.Errorf("expected 'ab23567XY', got %q", string(out))
	}
}

func TestApplyInsertAndDelete(t *testing.T) {
	out, inv, err := Apply(runes("abcdef"), []Edit[rune]{
		Insert(3, runes("123")),
		Delete[rune](5, 6),
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if string(out) != "abc123de" {
		t.Errorf("expected 'abc123de', got %q", string(out))
	}

	restored, _, err := Apply(out, inv)
	if err != nil {
		t.Fatalf("applying inverses failed: %v", err)
	}
	if string(restored) != "abcdef" {
		t.Errorf("expected original restored, got %q", string(restored))
	}
}

// TestInverseLaw checks the batch edit inverse law over a spread of
// disjoint edit batches: applying a batch and then its inverses
// restores the input exactly.
func TestInverseLaw(t *testing.T) {
	input := "The quick brown fox jumps over the lazy dog"

	batches := [][]Edit[rune]{
		{
			{Range: piece.Range{Start: 4, End: 9}, New: runes("slow")},
		},
		{
			{Range: piece.Range{Start: 0, End: 3}, New: runes("A")},
			{Range: piece.Range{Start: 10, End: 15}, New: runes("scarlet")},
			{Range: piece.Range{Start: 40, End: 43}, New: nil},
		},
		{
			Insert(0, runes(">> ")),
			Insert(43, runes(" <<")),
		},
		{
			Delete[rune](0, 4),
			{Range: piece.Range{Start: 16, End: 19}, New: runes("cat")},
			Insert(20, runes("swiftly ")),
		},
	}

	for i, edits := range batches {
		out, inv, err := Apply(runes(input), edits)
		if err != nil {
			t.Fatalf("batch %d: apply failed: %v", i, err)
		}
		restored, _, err := Apply(out, inv)
		if err != nil {
			t.Fatalf("batch %d: inverse apply failed: %v", i, err)
		}
		if string(restored) != input {
			t.Errorf("batch %d: expected %q restored, got %q", i, input, string(restored))
		}
	}
}

func TestApplyOverlapRejected(t *testing.T) {
	_, _, err := Apply(runes("abcdef"), []Edit[rune]{
		{Range: piece.Range{Start: 1, End: 4}, New: runes("x")},
		{Range: piece.Range{Start: 3, End: 5}, New: runes("y")},
	})
	if !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}
}

func TestApplyInvalidRange(t *testing.T) {
	_, _, err := Apply(runes("abc"), []Edit[rune]{
		{Range: piece.Range{Start: 2, End: 5}, New: runes("x")},
	})
	if !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestApplyEmptyBatch(t *testing.T) {
	out, inv, err := Apply(runes("abc"), nil)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if string(out) != "abc" {
		t.Errorf("expected unchanged slice, got %q", string(out))
	}
	if inv != nil {
		t.Errorf("expected no inverses, got %d", len(inv))
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	in := runes("abcdef")
	_, _, err := Apply(in, []Edit[rune]{
		{Range: piece.Range{Start: 0, End: 3}, New: runes("XY")},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if string(in) != "abcdef" {
		t.Errorf("input slice was modified: %q", string(in))
	}
}

func TestApplyGenericElementType(t *testing.T) {
	ints := []int{1, 2, 3, 4, 5}
	out, inv, err := Apply(ints, []Edit[int]{
		{Range: piece.Range{Start: 1, End: 3}, New: []int{9, 9, 9}},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	want := []int{1, 9, 9, 9, 4, 5}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
	if len(inv) != 1 || inv[0].Range != (piece.Range{Start: 1, End: 4}) {
		t.Errorf("expected inverse range [1:4), got %+v", inv)
	}
}
