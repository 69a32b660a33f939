// Package grammar provides composable parsing rules executed as
// memoizing recursive descent over a piece table.
//
// A grammar is a registry of named rules plus a start rule. Rules are
// built from combinators (Literal, CharIn, CharRange, Seq, Choice,
// Star, Plus, Opt, Repeat, Not, Peek, Wrap, Ref) and are stateless,
// so one grammar serves any number of documents and sessions.
//
//	g := grammar.New()
//	word := grammar.Plus(grammar.CharRange('a', 'z'))
//	g.Define("word", grammar.Wrap(tree.TypeOf("word"), word))
//	g.Define("doc", grammar.Wrap(tree.TypeOf("doc"),
//		grammar.Star(grammar.Choice(grammar.Ref("word"), grammar.Literal(" ")))))
//	g.SetStart("doc")
//
//	root, err := grammar.NewParser(g).Parse(buf, tab)
//
// Parsing is packrat: before attempting a rule at a position the
// parser consults the memo table, and every outcome, success or
// failure, is recorded. The table is purely an optimization; parses
// with and without it produce structurally identical trees.
//
// Grammar misuse (an undefined Ref, a missing start rule, a redefined
// name) panics: it is an authoring defect in the embedding
// application, surfaced early rather than recovered.
package grammar
