package grammar

import (
	"fmt"

	"github.com/dshills/incremark/memo"
	"github.com/dshills/incremark/piece"
	"github.com/dshills/incremark/tree"
)

// ParseError reports that the grammar's start rule failed to consume
// the full input. Furthest is the furthest buffer position the parse
// examined before giving up.
type ParseError struct {
	Furthest int
	Length   int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed at position %d of %d", e.Furthest, e.Length)
}

// Parser executes a grammar over a piece table. Parsers are stateless
// and reusable; per-parse state lives in the memo table and on the
// stack.
type Parser struct {
	g *Grammar
}

// NewParser creates a parser for the given grammar.
func NewParser(g *Grammar) *Parser {
	return &Parser{g: g}
}

// Grammar returns the grammar the parser executes.
func (p *Parser) Grammar() *Grammar {
	return p.g
}

// Parse applies the grammar's start rule at position 0 and requires it
// to consume the entire buffer. tab may be nil to disable memoization;
// with or without it the produced tree is structurally identical.
//
// On success the returned root covers the whole buffer. A start rule
// producing a single node yields that node; one producing several
// sibling nodes yields a fragment root.
func (p *Parser) Parse(buf *piece.Table, tab *memo.Table) (*tree.Node, error) {
	start := p.g.startRule()

	r := &run{buf: buf, tab: tab, g: p.g, length: buf.Len()}
	res := r.apply(start, 0)

	if !res.ok || res.length != buf.Len() {
		furthest := r.furthest
		if res.ok && res.length > furthest {
			furthest = res.length
		}
		return nil, &ParseError{Furthest: furthest, Length: buf.Len()}
	}

	root := res.node
	if root == nil {
		root = tree.NewFragment()
	}
	if root.IsFragment() && len(root.Children()) == 1 {
		root = root.Children()[0]
	}
	root.Freeze()
	return root, nil
}

// run carries the state of one parse: the buffer, the memo table, and
// high-water marks for examined positions.
type run struct {
	buf    *piece.Table
	tab    *memo.Table
	g      *Grammar
	length int

	// high is the furthest offset (exclusive) probed while matching
	// the rule application currently executing. It is saved and
	// narrowed around each application so that per-rule examined
	// lengths can be recorded in the memo table.
	high int

	// furthest is the parse-wide furthest probed offset, kept for
	// error reporting.
	furthest int
}

// at returns the code unit at pos, recording the probe in the
// examined high-water marks. Probing at or past the end of the buffer
// fails but still counts as examined, so results that depended on
// end-of-input are invalidated when content is appended.
func (r *run) at(pos int) (uint16, bool) {
	r.touch(pos + 1)
	if pos < 0 || pos >= r.length {
		return 0, false
	}
	u, err := r.buf.At(pos)
	if err != nil {
		return 0, false
	}
	return u, true
}

func (r *run) touch(end int) {
	if end > r.high {
		r.high = end
	}
	if end > r.furthest {
		r.furthest = end
	}
}

// apply runs a rule at a position through the memo table: a cached
// outcome is reused without re-descending; otherwise the rule executes
// and its outcome, success or failure, is stored before returning.
func (r *run) apply(rule Rule, pos int) result {
	if r.tab != nil {
		if m, ok := r.tab.Get(rule.id(), pos); ok {
			r.touch(pos + m.Examined)
			if !m.OK {
				return result{}
			}
			return result{ok: true, length: m.Length, node: m.Node}
		}
	}

	saved := r.high
	r.high = pos
	res := rule.match(r, pos)
	examined := r.high - pos
	if !res.ok && examined < 1 {
		examined = 1
	}
	if r.high < saved {
		r.high = saved
	}

	if r.tab != nil {
		r.tab.Put(rule.id(), pos, memo.Result{
			OK:       res.ok,
			Length:   res.length,
			Examined: examined,
			Node:     res.node,
		})
	}
	return res
}
