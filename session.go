package incremark

import (
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/dshills/incremark/grammar"
	"github.com/dshills/incremark/memo"
	"github.com/dshills/incremark/piece"
	"github.com/dshills/incremark/tree"
)

// Re-export commonly used types for convenience.
type (
	// Range represents a span of code units in the buffer.
	Range = piece.Range

	// Node is a syntax tree node.
	Node = tree.Node

	// Anchored pairs a node with its absolute start offset.
	Anchored = tree.Anchored

	// ParseError reports a failed parse with the furthest position
	// reached.
	ParseError = grammar.ParseError
)

// Session is an editing session: a piece-table buffer perpetually
// backed by a syntax tree. Every mutation repositions the memoization
// table and re-parses, so the tree is always current and the re-parse
// touches only the edit's syntactic neighborhood.
//
// A Session is single-threaded and synchronous by design: a mutation,
// the table update, and the re-parse happen atomically within one
// call. It holds no internal locks; the embedding application must
// confine all calls to one goroutine or guard the session externally.
type Session struct {
	id     string
	buf    *piece.Table
	parser *grammar.Parser
	tab    *memo.Table

	root     *tree.Node
	parseErr error
}

// NewSession creates a session over the given content and parses it
// immediately. A failed initial parse does not fail creation; the
// parse error is surfaced by Tree and the query methods until an edit
// makes the document parse.
func NewSession(g *grammar.Grammar, content string, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		buf:    piece.NewFromString(content),
		parser: grammar.NewParser(g),
		tab:    memo.NewTable(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.reparse()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Len returns the buffer length in code units.
func (s *Session) Len() int {
	return s.buf.Len()
}

// Text returns the full buffer content.
func (s *Session) Text() string {
	return s.buf.String()
}

// Read returns the text covered by r.
func (s *Session) Read(r Range) (string, error) {
	return s.buf.Slice(r)
}

// Buffer exposes the underlying piece table for read access.
func (s *Session) Buffer() *piece.Table {
	return s.buf
}

// Replace replaces the code units in r with text, repositions the
// memoization table, and re-parses. An out-of-range r fails without
// touching the buffer or the tree.
func (s *Session) Replace(r Range, text string) error {
	units := utf16.Encode([]rune(text))
	if _, err := s.buf.Replace(r, units); err != nil {
		return err
	}
	if s.tab != nil {
		s.tab.ApplyEdit(r, len(units))
	}
	s.reparse()
	return nil
}

// RevertToOriginal restores the content the session was created with,
// discards all memoized work, and re-parses.
func (s *Session) RevertToOriginal() {
	s.buf.RevertToOriginal()
	if s.tab != nil {
		s.tab.Clear()
	}
	s.reparse()
}

// Tree returns the syntax tree for the current buffer content, or the
// parse error if the content does not parse. The tree is read-only.
func (s *Session) Tree() (*tree.Node, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.root, nil
}

// Root returns the current tree anchored at offset 0.
func (s *Session) Root() (Anchored, error) {
	root, err := s.Tree()
	if err != nil {
		return Anchored{}, err
	}
	return tree.Root(root), nil
}

// Path returns the chain of anchored nodes from the root down to the
// deepest node covering index.
func (s *Session) Path(index int) ([]Anchored, error) {
	root, err := s.Root()
	if err != nil {
		return nil, err
	}
	return root.Path(index)
}

// FindNodes returns every node matching pred, in pre-order, with
// absolute ranges.
func (s *Session) FindNodes(pred func(*Node) bool) ([]Anchored, error) {
	root, err := s.Root()
	if err != nil {
		return nil, err
	}
	return root.Find(pred), nil
}

// NodeText returns the buffer text an anchored node covers.
func (s *Session) NodeText(a Anchored) (string, error) {
	return s.buf.Slice(a.Range())
}

// MemoStats returns the memoization table's cumulative hit and miss
// counts. Both are zero when memoization is disabled.
func (s *Session) MemoStats() (hits, misses uint64) {
	if s.tab == nil {
		return 0, 0
	}
	return s.tab.Stats()
}

// reparse recomputes the tree from the current buffer content.
func (s *Session) reparse() {
	s.root, s.parseErr = s.parser.Parse(s.buf, s.tab)
}
