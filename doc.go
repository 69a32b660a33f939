// Package incremark provides an incremental parsing text engine: a
// mutable text buffer that stays perpetually backed by a syntax tree,
// where every edit triggers only the minimum necessary re-parsing.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - piece: edit-optimized buffer (piece table over UTF-16 code units)
//   - grammar: composable parsing rules executed as packrat descent
//   - memo: memoization table with incremental edit repositioning
//   - tree: length-only syntax tree with anchored position views
//   - editset: generic batch range replacement with inverse edits
//
// The data flow on an edit: the buffer mutates in place and reports
// the edited range and new length; the memoization table shifts
// entries past the edit and drops entries the edit touched; the parser
// re-parses, reusing every surviving entry; consumers anchor the new
// root at offset 0 to resolve absolute ranges.
//
// # Basic Usage
//
//	g := grammar.New()
//	g.Define("doc", grammar.Wrap(tree.TypeOf("doc"), grammar.Star(grammar.AnyChar())))
//	g.SetStart("doc")
//
//	s := incremark.NewSession(g, "Hello, World!")
//
//	// Edit: the tree is re-parsed incrementally.
//	s.Replace(incremark.Range{Start: 7, End: 12}, "Go")
//
//	root, err := s.Tree()
//
//	// Map tree structure back to absolute text ranges.
//	path, err := s.Path(3)
//	nodes, err := s.FindNodes(func(n *incremark.Node) bool {
//		return n.Type() == tree.TypeOf("doc")
//	})
//
// Grammars can also be loaded from YAML or TOML files (package gdl)
// or authored as Lua scripts (package luagrammar), and hot-reloaded
// while a document is open (package watch).
//
// # Concurrency
//
// A Session is deliberately single-threaded: no operation blocks on
// I/O, a mutation and its re-parse are atomic within one call, and
// there is no internal locking. Confine each session to one goroutine.
package incremark
